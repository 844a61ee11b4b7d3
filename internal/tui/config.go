package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/rfidgate/internal/transport"
	"github.com/Veraticus/rfidgate/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	ListPorts      func() ([]string, error)
	ProgramOptions []tea.ProgramOption
	Port           string
	InitCommand    string
	Width          int
	Height         int
	LogLines       int
	ShowHelp       bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:       themes.Default,
		ListPorts:   transport.ListPorts,
		InitCommand: "getRFIDMode",
		Width:       80,
		Height:      24,
		LogLines:    500,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPort preselects the port to connect to on start.
func WithPort(port string) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithPortLister replaces serial port enumeration.
func WithPortLister(list func() ([]string, error)) Option {
	return func(c *Config) {
		c.ListPorts = list
	}
}

// WithInitCommand sets the command the send key writes to the reader.
func WithInitCommand(cmd string) Option {
	return func(c *Config) {
		c.InitCommand = cmd
	}
}

// WithLogLines bounds how many received lines the log pane keeps.
func WithLogLines(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.LogLines = n
		}
	}
}

// WithHelp starts with the full help shown.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}

// WithProgramOptions passes extra options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(c *Config) {
		c.ProgramOptions = append(c.ProgramOptions, opts...)
	}
}
