package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/rfidgate/internal/common"
)

func (m Model) connect(port string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if port == "" {
			return connectResultMsg{err: common.ErrNoPortSelected}
		}
		return connectResultMsg{port: port, err: ctrl.Open(port)}
	}
}

func (m Model) disconnect() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return disconnectResultMsg{err: ctrl.Close()}
	}
}

// refresh closes the connection and re-enumerates the ports.
func (m Model) refresh() tea.Cmd {
	ctrl, list := m.ctrl, m.config.ListPorts
	return func() tea.Msg {
		if err := ctrl.Close(); err != nil {
			return errorMsg{err: err, context: "disconnect"}
		}
		return loadPorts(list)
	}
}

func (m Model) loadPorts() tea.Cmd {
	list := m.config.ListPorts
	return func() tea.Msg {
		return loadPorts(list)
	}
}

func loadPorts(list func() ([]string, error)) tea.Msg {
	if list == nil {
		return portsLoadedMsg{}
	}
	ports, err := list()
	if err != nil {
		return portsLoadedMsg{err: fmt.Errorf("failed to list ports: %w", err)}
	}
	return portsLoadedMsg{ports: ports}
}

func (m Model) authorize(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Authorize(id)
		return registryChangedMsg{id: id, action: "added to database"}
	}
}

func (m Model) forget(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Forget(id)
		return registryChangedMsg{id: id, action: "removed"}
	}
}

func (m Model) send(command string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Send(command)
		return sentMsg{command: command, err: err}
	}
}
