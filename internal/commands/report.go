package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taiyaki256/discord-kintai/internal/report"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show aggregated work reports",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Today's total",
	Run:   withApp(reportRunner(report.PeriodDaily)),
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "This week's totals (Monday start)",
	Run:   withApp(reportRunner(report.PeriodWeekly)),
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "This month's totals",
	Run:   withApp(reportRunner(report.PeriodMonthly)),
}

func reportRunner(period report.Period) func(a *app, cmd *cobra.Command, args []string) {
	return func(a *app, cmd *cobra.Command, args []string) {
		today := timeutil.Today(a.clock)
		from, to := report.RangeFor(period, today)

		sessions, err := a.svc.SessionsInRange(a.user.ID, from, to)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		a.presenter.ShowReport(report.Aggregate(period.Title(), from, to, sessions))
	}
}

func init() {
	reportCmd.AddCommand(reportDailyCmd)
	reportCmd.AddCommand(reportWeeklyCmd)
	reportCmd.AddCommand(reportMonthlyCmd)
}
