package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// Service is the single entry point for ledger mutations. Every mutation and
// the reconciliation it necessitates run inside one store transaction, so no
// caller can observe a ledger write without its session recompute.
type Service struct {
	store Store
	clock timeutil.Clock
}

func NewService(store Store, clock timeutil.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// Start records a work start at the current instant. It fails with
// ErrAlreadyWorking when the day's last event is already a Start.
func (s *Service) Start(userID uint) (models.AttendanceEvent, error) {
	var created models.AttendanceEvent
	err := s.store.Transact(func(tx Store) error {
		now := s.clock.Now()
		date := timeutil.DateOf(now)

		events, err := tx.ListEvents(userID, date)
		if err != nil {
			return err
		}
		if n := len(events); n > 0 && events[n-1].Kind == models.KindStart {
			return ErrAlreadyWorking
		}
		if err := ValidateNewEvent(events, now, 0, now); err != nil {
			return err
		}

		created, err = tx.InsertEvent(userID, models.KindStart, now)
		if err != nil {
			return err
		}
		return Reconcile(tx, userID, date)
	})
	if err != nil {
		return models.AttendanceEvent{}, err
	}
	slog.Debug("work started", "user_id", userID, "event_id", created.ID)
	return created, nil
}

// End records a work end at the current instant and returns the minutes of
// the stretch it closed. It fails with ErrNotWorking unless the day's last
// event is a Start.
func (s *Service) End(userID uint) (models.AttendanceEvent, int, error) {
	var created models.AttendanceEvent
	var minutes int
	err := s.store.Transact(func(tx Store) error {
		now := s.clock.Now()
		date := timeutil.DateOf(now)

		events, err := tx.ListEvents(userID, date)
		if err != nil {
			return err
		}
		n := len(events)
		if n == 0 || events[n-1].Kind != models.KindStart {
			return ErrNotWorking
		}
		if err := ValidateNewEvent(events, now, 0, now); err != nil {
			return err
		}

		minutes = int(now.Sub(events[n-1].Timestamp).Minutes())
		created, err = tx.InsertEvent(userID, models.KindEnd, now)
		if err != nil {
			return err
		}
		return Reconcile(tx, userID, date)
	})
	if err != nil {
		return models.AttendanceEvent{}, 0, err
	}
	slog.Debug("work ended", "user_id", userID, "event_id", created.ID, "minutes", minutes)
	return created, minutes, nil
}

// AddEvent inserts a backdated event from the correction flow.
func (s *Service) AddEvent(userID uint, kind models.EventKind, ts time.Time) (models.AttendanceEvent, error) {
	if !kind.Valid() {
		return models.AttendanceEvent{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}
	var created models.AttendanceEvent
	err := s.store.Transact(func(tx Store) error {
		date := timeutil.DateOf(ts)
		events, err := tx.ListEvents(userID, date)
		if err != nil {
			return err
		}
		if err := ValidateNewEvent(events, ts, 0, s.clock.Now()); err != nil {
			return err
		}
		created, err = tx.InsertEvent(userID, kind, ts)
		if err != nil {
			return err
		}
		return Reconcile(tx, userID, date)
	})
	if err != nil {
		return models.AttendanceEvent{}, err
	}
	return created, nil
}

// EditEventTime moves an event to a new timestamp. When the new timestamp
// lands on another date, both the old and new dates are reconciled.
func (s *Service) EditEventTime(eventID uint, ts time.Time) (models.AttendanceEvent, error) {
	var updated models.AttendanceEvent
	err := s.store.Transact(func(tx Store) error {
		current, err := tx.GetEvent(eventID)
		if err != nil {
			return err
		}
		oldDate := timeutil.DateOf(current.Timestamp)
		newDate := timeutil.DateOf(ts)

		events, err := tx.ListEvents(current.UserID, newDate)
		if err != nil {
			return err
		}
		if err := ValidateNewEvent(events, ts, eventID, s.clock.Now()); err != nil {
			return err
		}

		updated, err = tx.UpdateEventTime(eventID, ts)
		if err != nil {
			return err
		}
		if err := Reconcile(tx, current.UserID, newDate); err != nil {
			return err
		}
		if oldDate != newDate {
			return Reconcile(tx, current.UserID, oldDate)
		}
		return nil
	})
	if err != nil {
		return models.AttendanceEvent{}, err
	}
	return updated, nil
}

// DeleteEvent removes one event and rebuilds its date.
func (s *Service) DeleteEvent(eventID uint) error {
	return s.store.Transact(func(tx Store) error {
		current, err := tx.GetEvent(eventID)
		if err != nil {
			return err
		}
		if err := tx.DeleteEvent(eventID); err != nil {
			return err
		}
		return Reconcile(tx, current.UserID, timeutil.DateOf(current.Timestamp))
	})
}

// DeleteDay removes all of a user's events for one date. Sessions are never
// deleted directly: reconciliation of the now-empty date clears them.
func (s *Service) DeleteDay(userID uint, date timeutil.Date) error {
	return s.store.Transact(func(tx Store) error {
		if err := tx.DeleteEventsForDate(userID, date); err != nil {
			return err
		}
		return Reconcile(tx, userID, date)
	})
}

// DayEvents returns a user's events for one date in chronological order.
func (s *Service) DayEvents(userID uint, date timeutil.Date) ([]models.AttendanceEvent, error) {
	return s.store.ListEvents(userID, date)
}

// SessionsInRange returns the derived sessions with from <= date <= to.
func (s *Service) SessionsInRange(userID uint, from, to timeutil.Date) ([]models.WorkSession, error) {
	return s.store.ListSessions(userID, from, to)
}

// HistoryDates returns the dates carrying records over the past 30 days,
// newest first.
func (s *Service) HistoryDates(userID uint) ([]timeutil.Date, error) {
	today := timeutil.Today(s.clock)
	return s.store.ListEventDates(userID, today.AddDays(-30), today)
}
