package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taiyaki256/discord-kintai/internal/correction"
	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/report"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/tui"
	"github.com/Taiyaki256/discord-kintai/internal/view"
)

// showError routes rejected inputs through the presenter notice surface and
// prints everything else plainly.
func (a *app) showError(err error) {
	var vErr *ledger.ValidationError
	if errors.As(err, &vErr) {
		a.presenter.ShowValidationFailure(view.ValidationFailure{Message: vErr.Message})
		return
	}
	fmt.Printf("Error: %v\n", err)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Record the start of work",
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		event, err := a.svc.Start(a.user.ID)
		if err != nil {
			a.showError(err)
			return
		}
		fmt.Printf("🟢 Work started at %s\n", timeutil.FormatClock(event.Timestamp))
	}),
}

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "Record the end of work",
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		event, minutes, err := a.svc.End(a.user.ID)
		if err != nil {
			a.showError(err)
			return
		}
		fmt.Printf("🔴 Work ended at %s\n", timeutil.FormatClock(event.Timestamp))
		fmt.Printf("Worked: %s\n", timeutil.FormatMinutes(minutes))
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's records and sessions",
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		today := timeutil.Today(a.clock)

		events, err := a.svc.DayEvents(a.user.ID, today)
		if err != nil {
			a.showError(err)
			return
		}
		a.presenter.ShowLedger(correction.BuildLedgerView(today, events, 0))

		sessions, err := a.svc.SessionsInRange(a.user.ID, today, today)
		if err != nil {
			a.showError(err)
			return
		}
		a.presenter.ShowSessions(report.Summarize(sessions))
	}),
}

var fixCmd = &cobra.Command{
	Use:   "fix [date]",
	Short: "Interactively edit, add or delete records",
	Long: `Fix opens the interactive correction flow: pick a record, enter a new
time or pick a record kind, then confirm. Without a date it operates on
today; with a YYYY-MM-DD argument it operates on that date.

The flow expires after five minutes of inactivity and never changes the
ledger without an explicit confirmation.`,
	Args: cobra.MaximumNArgs(1),
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		date := timeutil.Today(a.clock)
		if len(args) == 1 {
			var err error
			date, err = timeutil.ParseDate(args[0])
			if err != nil {
				a.showError(err)
				return
			}
		}

		if err := tui.RunFixTUI(a.mgr, a.presenter, a.user.ID, date); err != nil {
			if errors.Is(err, ledger.ErrNoRecordsToEdit) {
				fmt.Println("No records for this date yet.")
				return
			}
			a.showError(err)
		}
	}),
}
