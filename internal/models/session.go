package models

import (
	"time"

	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// SessionAnomaly marks a derived session that did not come from a clean
// Start/End pair. Anomalies are informational, never errors.
type SessionAnomaly string

const (
	AnomalyNone SessionAnomaly = ""
	// AnomalyMissingStart is a stray End with no open session: stored as a
	// zero-duration completed session so it stays visible.
	AnomalyMissingStart SessionAnomaly = "missing_start"
	// AnomalyImplicitClose is a session cut off by a following Start with no
	// End of its own ("forgot to end, started again").
	AnomalyImplicitClose SessionAnomaly = "implicit_close"
	// AnomalyNegativeDuration is a pair whose End precedes its Start after a
	// bad edit; the duration is clamped to zero.
	AnomalyNegativeDuration SessionAnomaly = "negative_duration"
)

// WorkSession is a derived pairing of a Start with its End (or an open or
// anomalous pairing). Sessions are rebuilt wholesale from the date's events
// after every ledger mutation and are never edited directly.
type WorkSession struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Date         timeutil.Date  `gorm:"type:date;not null;index" json:"date"`
	StartTime    time.Time      `gorm:"not null" json:"start_time"`
	EndTime      *time.Time     `json:"end_time"`
	TotalMinutes *int           `json:"total_minutes"`
	Completed    bool           `gorm:"default:false" json:"completed"`
	Anomaly      SessionAnomaly `gorm:"default:''" json:"anomaly"`
}

// Open reports whether the session has no End yet.
func (s *WorkSession) Open() bool { return !s.Completed }

// Minutes returns the closed duration, or 0 for an open session.
func (s *WorkSession) Minutes() int {
	if s.TotalMinutes == nil {
		return 0
	}
	return *s.TotalMinutes
}
