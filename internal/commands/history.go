package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taiyaki256/discord-kintai/internal/correction"
	"github.com/Taiyaki256/discord-kintai/internal/report"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

var historyCmd = &cobra.Command{
	Use:   "history [date]",
	Short: "List dates with records, or show one date's records",
	Long: `Without arguments, lists the dates from the past 30 days that carry
attendance records. With a YYYY-MM-DD argument, shows that date's records
and derived sessions.`,
	Args: cobra.MaximumNArgs(1),
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			dates, err := a.svc.HistoryDates(a.user.ID)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			if len(dates) == 0 {
				fmt.Println("No records in the past 30 days.")
				return
			}
			for _, d := range dates {
				fmt.Println(d)
			}
			return
		}

		date, err := timeutil.ParseDate(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		events, err := a.svc.DayEvents(a.user.ID, date)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		a.presenter.ShowLedger(correction.BuildLedgerView(date, events, 0))

		sessions, err := a.svc.SessionsInRange(a.user.ID, date, date)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		a.presenter.ShowSessions(report.Summarize(sessions))
	}),
}
