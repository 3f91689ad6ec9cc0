package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Taiyaki256/discord-kintai/internal/correction"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/view"
)

// RunFixTUI starts the interactive correction flow for one user and date.
// Expiry and cancellation notices go through the presenter.
func RunFixTUI(mgr *correction.Manager, presenter view.Presenter, userID uint, date timeutil.Date) error {
	model, err := NewFixModel(mgr, userID, date)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()

	// Handle exit messages after TUI closes
	if err != nil {
		return err
	}

	if m, ok := finalModel.(FixModel); ok {
		switch {
		case m.expired:
			presenter.ShowFlowExpired(view.FlowExpired{
				Message: "Correction flow expired. Run the command again to continue.",
			})
		case m.cancelled:
			presenter.ShowFlowExpired(view.FlowExpired{
				Message: "Correction cancelled, nothing changed.",
			})
		case m.err != nil:
			fmt.Printf("❌ Error: %v\n", m.err)
		case m.commit != nil:
			printCommit(m)
		}
	}

	return nil
}

func printCommit(m FixModel) {
	switch m.commit.Action {
	case correction.ActionEdit:
		fmt.Printf("✅ Record #%d moved to %s\n",
			m.commit.Event.ID, timeutil.FormatClock(m.commit.Event.Timestamp))
	case correction.ActionAdd:
		fmt.Printf("✅ Added %s record at %s\n",
			m.commit.Event.Kind.Label(), timeutil.FormatClock(m.commit.Event.Timestamp))
	case correction.ActionDelete:
		fmt.Printf("✅ Deleted %d record(s), sessions recalculated\n", m.commit.Deleted)
	}
}
