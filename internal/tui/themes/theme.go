// Package themes defines the color schemes of the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Panel         lipgloss.Style
	FocusedPanel  lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#3b82f6"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),
	Success: lipgloss.Color("#10b981"),
	Warning: lipgloss.Color("#f59e0b"),
	Error:   lipgloss.Color("#ef4444"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#3b82f6")).
		Padding(0, 1),
	Subtitle: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#3b82f6")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	FocusedPanel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3b82f6")).
		Padding(0, 1),

	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusWarning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")),
	StatusPending: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
}

// Minimal avoids colored backgrounds for terminals with limited palettes.
var Minimal = Theme{
	Primary: lipgloss.Color("12"),
	Muted:   lipgloss.Color("8"),
	Border:  lipgloss.Color("8"),
	Success: lipgloss.Color("2"),
	Warning: lipgloss.Color("3"),
	Error:   lipgloss.Color("1"),

	Title:    lipgloss.NewStyle().Bold(true).Underline(true),
	Subtitle: lipgloss.NewStyle().Bold(true),
	Normal:   lipgloss.NewStyle(),
	Bold:     lipgloss.NewStyle().Bold(true),
	Selected: lipgloss.NewStyle().Reverse(true),
	Panel: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Padding(0, 1),
	FocusedPanel: lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		Padding(0, 1),

	StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	StatusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	StatusPending: lipgloss.NewStyle().Faint(true),
}

// ByName returns the theme registered under name.
func ByName(name string) (Theme, bool) {
	switch name {
	case "", "default":
		return Default, true
	case "minimal":
		return Minimal, true
	default:
		return Theme{}, false
	}
}
