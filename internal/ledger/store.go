package ledger

import (
	"time"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// Store is the transactional repository the core runs against. Implementations
// must serialize concurrent mutations touching the same user and date; within
// Transact the callback holds exclusive access to the rows it touches.
type Store interface {
	// ListEvents returns a user's events for one date, ordered by timestamp
	// ascending with ties broken by id.
	ListEvents(userID uint, date timeutil.Date) ([]models.AttendanceEvent, error)
	// GetEvent returns one event, or ErrEventNotFound.
	GetEvent(id uint) (models.AttendanceEvent, error)
	// InsertEvent appends a new event to the ledger.
	InsertEvent(userID uint, kind models.EventKind, ts time.Time) (models.AttendanceEvent, error)
	// UpdateEventTime moves an event to a new timestamp, marking it modified
	// and recording the pre-first-edit original timestamp.
	UpdateEventTime(id uint, ts time.Time) (models.AttendanceEvent, error)
	// DeleteEvent removes an event. Hard delete, no tombstone.
	DeleteEvent(id uint) error
	// DeleteEventsForDate removes all of a user's events on one date.
	DeleteEventsForDate(userID uint, date timeutil.Date) error

	// ReplaceSessions swaps the stored session set for one user and date with
	// the given set, atomically.
	ReplaceSessions(userID uint, date timeutil.Date, sessions []models.WorkSession) error
	// ListSessions returns sessions with from <= date <= to, ordered by date
	// then start time.
	ListSessions(userID uint, from, to timeutil.Date) ([]models.WorkSession, error)

	// ListEventDates returns the distinct dates carrying events for a user in
	// [from, to], newest first.
	ListEventDates(userID uint, from, to timeutil.Date) ([]timeutil.Date, error)

	// Transact runs fn against a store view bound to one transaction. Any
	// error rolls the whole transaction back.
	Transact(fn func(Store) error) error
}
