package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/rfidgate/internal/access"
)

const listRows = 6

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render("RFID Access Monitor"),
		m.renderStatus(),
		m.renderLists(),
		m.renderLog(),
		m.renderMessage(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatus() string {
	label := m.theme.Subtitle.Render

	port := m.port
	if port == "" {
		port = "none"
	}
	conn := m.theme.StatusError.Render("Not established")
	if m.connected {
		conn = m.theme.StatusSuccess.Render("Connected")
	}

	check := m.theme.StatusError.Render("Disabled")
	if m.checkMode {
		check = m.theme.StatusSuccess.Render("Active")
	}

	id := m.theme.StatusPending.Render("none")
	if m.hasCurrent {
		id = m.theme.Bold.Render(m.current)
	}

	lines := []string{
		fmt.Sprintf("%s %s  %s", label("Port:"), port, conn),
		fmt.Sprintf("%s %s", label("Check mode:"), check),
		fmt.Sprintf("%s %s  %s %s", label("Identifier:"), id, label("Access:"), m.renderVerdict()),
	}
	return strings.Join(lines, "\n")
}

// renderVerdict colors the verdict: green granted, red denied, amber while
// the device authenticates.
func (m Model) renderVerdict() string {
	switch m.verdict {
	case access.Granted:
		return m.theme.StatusSuccess.Render(m.verdict.String())
	case access.Denied:
		return m.theme.StatusError.Render(m.verdict.String())
	case access.Authenticating:
		return m.theme.StatusWarning.Render(m.verdict.String())
	default:
		return m.theme.StatusPending.Render(m.verdict.String())
	}
}

func (m Model) renderLists() string {
	width := max((m.width-4)/2, 20)
	left := m.renderList(PaneProvisional, "Provisional", width)
	right := m.renderList(PaneAuthorized, "Database", width)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderList(p Pane, title string, width int) string {
	items := m.list(p)
	cursor := m.cursor[p]

	// keep the cursor visible
	start := 0
	if cursor >= listRows {
		start = cursor - listRows + 1
	}

	rows := make([]string, 0, listRows+1)
	rows = append(rows, m.theme.Subtitle.Render(fmt.Sprintf("%s (%d)", title, len(items))))
	for i := start; i < len(items) && i < start+listRows; i++ {
		row := "  " + items[i]
		if i == cursor && p == m.focus {
			row = m.theme.Selected.Render("> " + items[i])
		} else if i == cursor {
			row = "> " + items[i]
		}
		rows = append(rows, row)
	}
	if len(items) == 0 {
		rows = append(rows, m.theme.StatusPending.Render("  empty"))
	}
	for len(rows) < listRows+1 {
		rows = append(rows, "")
	}

	style := m.theme.Panel
	if p == m.focus {
		style = m.theme.FocusedPanel
	}
	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) renderLog() string {
	title := m.theme.Subtitle.Render(fmt.Sprintf("Received (%d)", len(m.logLines)))
	return lipgloss.JoinVertical(lipgloss.Left, title, m.log.View())
}

func (m Model) renderMessage() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render("✗ " + m.lastError.Error())
	}
	if m.status != "" {
		return m.theme.StatusInfo.Render(m.status)
	}
	return ""
}
