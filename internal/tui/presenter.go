package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/view"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentMain))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
)

// TerminalPresenter renders view models as styled terminal text.
type TerminalPresenter struct {
	Out io.Writer
}

var _ view.Presenter = (*TerminalPresenter)(nil)

func (p *TerminalPresenter) ShowLedger(lv view.LedgerView) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Records for %s", lv.Date)))
	b.WriteString("\n")
	if len(lv.Entries) == 0 {
		b.WriteString(subtleStyle.Render("no records"))
		b.WriteString("\n")
	}
	for _, e := range lv.Entries {
		line := fmt.Sprintf("  [%s] %-5s %s", e.SelectionKey, e.Kind, e.Clock)
		if e.Modified {
			line += warnStyle.Render(fmt.Sprintf(" (edited, was %s)", e.OriginalClock))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if lv.HasMore {
		b.WriteString(subtleStyle.Render("  ...more records on the next page"))
		b.WriteString("\n")
	}
	fmt.Fprint(p.Out, b.String())
}

func (p *TerminalPresenter) ShowSessions(sessions []view.SessionSummaryView) {
	if len(sessions) == 0 {
		fmt.Fprintln(p.Out, subtleStyle.Render("no sessions"))
		return
	}
	for _, s := range sessions {
		fmt.Fprintln(p.Out, renderSession(s))
	}
}

func (p *TerminalPresenter) ShowReport(rv view.ReportView) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s to %s)", rv.Title, rv.From, rv.To)))
	b.WriteString("\n")

	if len(rv.Days) == 0 && len(rv.InProgress) == 0 {
		b.WriteString(subtleStyle.Render("no work recorded in this period"))
		b.WriteString("\n")
		fmt.Fprint(p.Out, b.String())
		return
	}

	for _, day := range rv.Days {
		b.WriteString(fmt.Sprintf("%s  %s\n", day.Date, timeutil.FormatMinutes(day.Minutes)))
		for _, s := range day.Sessions {
			b.WriteString("  ")
			b.WriteString(renderSession(s))
			b.WriteString("\n")
		}
	}
	b.WriteString(successStyle.Render(fmt.Sprintf("Total: %s", timeutil.FormatMinutes(rv.TotalMinutes))))
	b.WriteString("\n")

	for _, s := range rv.InProgress {
		b.WriteString(warnStyle.Render(fmt.Sprintf("In progress since %s", timeutil.FormatClock(s.StartTime))))
		b.WriteString("\n")
	}
	fmt.Fprint(p.Out, b.String())
}

func (p *TerminalPresenter) ShowValidationFailure(f view.ValidationFailure) {
	fmt.Fprintln(p.Out, errStyle.Render("✗ "+f.Message))
}

func (p *TerminalPresenter) ShowFlowExpired(f view.FlowExpired) {
	fmt.Fprintln(p.Out, warnStyle.Render("⏰ "+f.Message))
}

func renderSession(s view.SessionSummaryView) string {
	var line string
	if s.Completed && s.EndTime != nil {
		line = fmt.Sprintf("%s - %s  %s",
			timeutil.FormatClock(s.StartTime),
			timeutil.FormatClock(*s.EndTime),
			timeutil.FormatMinutes(s.Minutes))
	} else {
		line = fmt.Sprintf("%s -       working", timeutil.FormatClock(s.StartTime))
	}
	if s.Anomaly != "" {
		line += warnStyle.Render("  ⚠ " + anomalyLabel(s.Anomaly))
	}
	return line
}

func anomalyLabel(anomaly string) string {
	switch anomaly {
	case "missing_start":
		return "end without a matching start"
	case "implicit_close":
		return "no end recorded before the next start"
	case "negative_duration":
		return "end precedes start"
	default:
		return anomaly
	}
}
