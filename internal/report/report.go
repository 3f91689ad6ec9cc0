// Package report folds derived work sessions into daily, weekly, and monthly
// totals. Only completed sessions count toward totals; open sessions are
// reported separately as in progress.
package report

import (
	"sort"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/view"
)

// Period selects the reporting window ending today.
type Period int

const (
	PeriodDaily Period = iota
	PeriodWeekly
	PeriodMonthly
)

func (p Period) Title() string {
	switch p {
	case PeriodDaily:
		return "Daily report"
	case PeriodWeekly:
		return "Weekly report"
	case PeriodMonthly:
		return "Monthly report"
	default:
		return "Report"
	}
}

// RangeFor returns the inclusive date range a period covers. Weeks start on
// Monday; months on the 1st.
func RangeFor(p Period, today timeutil.Date) (timeutil.Date, timeutil.Date) {
	switch p {
	case PeriodWeekly:
		return today.WeekStart(), today
	case PeriodMonthly:
		return today.MonthStart(), today
	default:
		return today, today
	}
}

// Aggregate folds sessions into per-day subtotals and a grand total. Days are
// emitted in stable ascending date order. Anomalous completed sessions count
// toward totals with their clamped durations; their flags ride along for
// display.
func Aggregate(title string, from, to timeutil.Date, sessions []models.WorkSession) view.ReportView {
	rv := view.ReportView{Title: title, From: from, To: to}

	byDay := make(map[timeutil.Date]*view.DayTotalView)
	var order []timeutil.Date

	for _, s := range sessions {
		if s.Date.Before(from) || to.Before(s.Date) {
			continue
		}
		sv := summarize(s)
		if s.Open() {
			rv.InProgress = append(rv.InProgress, sv)
			continue
		}

		day, ok := byDay[s.Date]
		if !ok {
			day = &view.DayTotalView{Date: s.Date}
			byDay[s.Date] = day
			order = append(order, s.Date)
		}
		day.Sessions = append(day.Sessions, sv)
		day.Minutes += s.Minutes()
		rv.TotalMinutes += s.Minutes()
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	for _, d := range order {
		rv.Days = append(rv.Days, *byDay[d])
	}
	return rv
}

func summarize(s models.WorkSession) view.SessionSummaryView {
	return view.SessionSummaryView{
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Minutes:   s.Minutes(),
		Completed: s.Completed,
		Anomaly:   string(s.Anomaly),
	}
}

// Summarize converts sessions to their display form preserving order.
func Summarize(sessions []models.WorkSession) []view.SessionSummaryView {
	out := make([]view.SessionSummaryView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, summarize(s))
	}
	return out
}
