// Package tui implements the interactive access monitor.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/registry"
	"github.com/Veraticus/rfidgate/internal/tui/themes"
)

// Pane identifies one of the identifier lists.
type Pane int

const (
	PaneProvisional Pane = iota
	PaneAuthorized
)

// Model holds the monitor state.
type Model struct {
	ctrl        Controller
	theme       themes.Theme
	lastError   error
	help        help.Model
	status      string
	port        string
	current     string
	ports       []string
	provisional []string
	authorized  []string
	logLines    []string
	log         viewport.Model
	keymap      KeyMap
	config      Config
	cursor      [2]int
	width       int
	height      int
	focus       Pane
	verdict     access.Verdict
	connected   bool
	checkMode   bool
	hasCurrent  bool
	quitting    bool
}

// NewModel creates the monitor model driving ctrl.
func NewModel(ctrl Controller, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		ctrl:   ctrl,
		config: cfg,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   h,
		port:   cfg.Port,
		width:  cfg.Width,
		height: cfg.Height,
		log:    viewport.New(cfg.Width, 5),
	}
	if cfg.Port != "" {
		m.ports = []string{cfg.Port}
	}
	m.reloadLists()
	m.handleResize()
	return m
}

// Init loads the port list and connects to the preselected port, if any.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadPorts()}
	if m.port != "" {
		cmds = append(cmds, m.connect(m.port))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()

	case lineMsg:
		m.appendLog(fmt.Sprintf("%s %s", msg.at.Format("15:04:05"), msg.text))

	case identifierObservedMsg:
		m.reloadLists()

	case identifierChangedMsg:
		m.current = msg.id
		m.hasCurrent = msg.ok

	case verdictMsg:
		m.verdict = msg.verdict

	case checkModeMsg:
		m.checkMode = msg.on

	case connectionMsg:
		// the session may have reset the registry
		m.reloadLists()
		m.connected = msg.connected
		if msg.connected {
			m.port = msg.port
			m.status = "Connected to " + msg.port
		} else {
			m.status = "Disconnected from " + msg.port
		}

	case connectResultMsg:
		if msg.err != nil {
			m.lastError = common.NewUserError("Could not connect", msg.err)
		} else {
			m.lastError = nil
		}

	case disconnectResultMsg:
		if msg.err != nil {
			m.lastError = msg.err
		}

	case portsLoadedMsg:
		m.handlePorts(msg)

	case registryChangedMsg:
		m.reloadLists()
		m.status = fmt.Sprintf("%s %s", msg.id, msg.action)

	case sentMsg:
		if msg.err != nil {
			m.lastError = msg.err
		} else {
			m.status = "Sent " + msg.command
		}

	case errorMsg:
		m.lastError = msg.err
		if msg.context != "" {
			m.lastError = fmt.Errorf("%s: %w", msg.context, msg.err)
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()

	case key.Matches(msg, m.keymap.NextPane):
		m.focus = (m.focus + 1) % 2

	case key.Matches(msg, m.keymap.Up):
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor[m.focus] < len(m.list(m.focus))-1 {
			m.cursor[m.focus]++
		}

	case key.Matches(msg, m.keymap.LogUp):
		m.log.HalfPageUp()

	case key.Matches(msg, m.keymap.LogDown):
		m.log.HalfPageDown()

	case key.Matches(msg, m.keymap.Authorize):
		if id, ok := m.selected(PaneProvisional); ok && m.focus == PaneProvisional {
			return m, m.authorize(id)
		}

	case key.Matches(msg, m.keymap.Forget):
		if id, ok := m.selected(m.focus); ok {
			return m, m.forget(id)
		}

	case key.Matches(msg, m.keymap.Connect):
		m.status = "Connecting to " + m.port
		return m, m.connect(m.port)

	case key.Matches(msg, m.keymap.Disconnect):
		return m, m.disconnect()

	case key.Matches(msg, m.keymap.Refresh):
		m.status = "Refreshing ports"
		return m, m.refresh()

	case key.Matches(msg, m.keymap.NextPort):
		m.nextPort()

	case key.Matches(msg, m.keymap.Query):
		if m.config.InitCommand != "" {
			return m, m.send(m.config.InitCommand)
		}
	}

	return m, nil
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	// header, status line, both list panels and help take the rest
	reserved := 14
	if m.help.ShowAll {
		reserved += 4
	}
	logHeight := m.height - reserved
	if logHeight < 3 {
		logHeight = 3
	}
	m.log.Width = m.width - 4
	m.log.Height = logHeight
	m.help.Width = m.width
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if over := len(m.logLines) - m.config.LogLines; over > 0 {
		m.logLines = slices.Delete(m.logLines, 0, over)
	}
	atBottom := m.log.AtBottom()
	m.log.SetContent(strings.Join(m.logLines, "\n"))
	if atBottom {
		m.log.GotoBottom()
	}
}

// reloadLists reads both lists from the registry. List does not take the
// session lock, so this is safe inside Update.
func (m *Model) reloadLists() {
	if m.ctrl == nil {
		return
	}
	m.provisional = m.ctrl.List(registry.Provisional)
	m.authorized = m.ctrl.List(registry.Authorized)
	for _, p := range []Pane{PaneProvisional, PaneAuthorized} {
		if n := len(m.list(p)); m.cursor[p] >= n {
			m.cursor[p] = max(n-1, 0)
		}
	}
}

func (m *Model) handlePorts(msg portsLoadedMsg) {
	if msg.err != nil {
		m.lastError = msg.err
		return
	}
	m.ports = msg.ports
	if m.port != "" && !slices.Contains(m.ports, m.port) {
		m.ports = append([]string{m.port}, m.ports...)
	}
	if m.port == "" && len(m.ports) > 0 {
		m.port = m.ports[0]
	}
	if len(m.ports) == 0 {
		m.status = "No serial ports found"
		return
	}
	m.status = fmt.Sprintf("%d port(s) available", len(m.ports))
}

func (m *Model) nextPort() {
	if len(m.ports) == 0 {
		return
	}
	i := slices.Index(m.ports, m.port)
	m.port = m.ports[(i+1)%len(m.ports)]
	m.status = "Selected " + m.port
}

func (m Model) list(p Pane) []string {
	if p == PaneAuthorized {
		return m.authorized
	}
	return m.provisional
}

func (m Model) selected(p Pane) (string, bool) {
	items := m.list(p)
	if len(items) == 0 {
		return "", false
	}
	return items[m.cursor[p]], true
}
