package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/model"
)

// RenderAccessEvents writes events as a table, one row per decision.
func RenderAccessEvents(w io.Writer, events []model.AccessEvent) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No access events recorded"))
		return err
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TableCellStyle.Width(24).Render("Time"),
		TableCellStyle.Width(20).Render("Identifier"),
		TableCellStyle.Width(10).Render("Verdict"),
		TableCellStyle.Width(8).Render("Check"),
		TableCellStyle.Render("Port"),
	)

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")
	for _, e := range events {
		check := "off"
		if e.CheckMode {
			check = "auth"
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Width(24).Render(e.OccurredAt.Local().Format("2006-01-02 15:04:05")),
			TableCellStyle.Width(20).Render(e.Identifier),
			TableCellStyle.Width(10).Render(verdictCell(e.Verdict)),
			TableCellStyle.Width(8).Render(check),
			TableCellStyle.Render(e.Port),
		)
		b.WriteString(row)
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}

func verdictCell(verdict string) string {
	switch verdict {
	case access.Granted.String():
		return VerdictStyle(access.Granted).Render(verdict)
	case access.Denied.String():
		return VerdictStyle(access.Denied).Render(verdict)
	default:
		return verdict
	}
}

// RenderSummary writes per-verdict totals in a box.
func RenderSummary(w io.Writer, summary *model.AccessSummary) error {
	verdicts := make([]string, 0, len(summary.ByVerdict))
	for v := range summary.ByVerdict {
		verdicts = append(verdicts, v)
	}
	sort.Strings(verdicts)

	lines := []string{
		fmt.Sprintf("%s %d", BoldStyle.Render("Decisions:"), summary.Total),
		fmt.Sprintf("%s %d", BoldStyle.Render("Identifiers:"), summary.Identifiers),
	}
	for _, v := range verdicts {
		lines = append(lines, fmt.Sprintf("  %s %d", verdictCell(v)+":", summary.ByVerdict[v]))
	}

	_, err := fmt.Fprintln(w, RenderBox("Access summary", strings.Join(lines, "\n")))
	return err
}

// RenderPorts writes the available serial ports, marking the configured one.
func RenderPorts(w io.Writer, ports []string, configured string) error {
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, FormatWarning("No serial ports found"))
		return err
	}

	for _, port := range ports {
		line := "  " + port
		if port == configured {
			line = SuccessStyle.Render("* " + port)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
