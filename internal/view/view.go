// Package view defines the platform-free view models the core hands to a
// Presenter. Nothing in here knows about terminals, widgets, or chat embeds:
// surfaces deal only in selection keys, text, and confirm/decline signals.
package view

import (
	"time"

	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// LedgerEntry is one event row, keyed for selection.
type LedgerEntry struct {
	SelectionKey  string // stable key a surface echoes back to pick this row
	Kind          string // "start" or "end"
	Clock         string // "15:04" in the canonical zone
	Modified      bool
	OriginalClock string // pre-first-edit clock time, when Modified
}

// LedgerView is a date's ordered events.
type LedgerView struct {
	Date    timeutil.Date
	Entries []LedgerEntry
	Page    int
	HasMore bool // more entries beyond the surface's page size
}

// SessionSummaryView is one derived session for display.
type SessionSummaryView struct {
	Date      timeutil.Date
	StartTime time.Time
	EndTime   *time.Time
	Minutes   int
	Completed bool
	Anomaly   string // empty when the session came from a clean pair
}

// DayTotalView is one date's subtotal within a report.
type DayTotalView struct {
	Date     timeutil.Date
	Minutes  int
	Sessions []SessionSummaryView
}

// ReportView is an aggregated report over a period.
type ReportView struct {
	Title        string
	From, To     timeutil.Date
	Days         []DayTotalView
	TotalMinutes int
	InProgress   []SessionSummaryView
}

// ValidationFailure tells the user why an input was rejected; the flow stays
// where it was.
type ValidationFailure struct {
	Message string
}

// FlowExpired tells the user a correction flow timed out or was cancelled.
type FlowExpired struct {
	Message string
}

// Presenter renders view models on some surface. The core never inspects the
// result of presentation.
type Presenter interface {
	ShowLedger(LedgerView)
	ShowSessions([]SessionSummaryView)
	ShowReport(ReportView)
	ShowValidationFailure(ValidationFailure)
	ShowFlowExpired(FlowExpired)
}
