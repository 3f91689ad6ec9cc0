package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// ListEvents returns a user's events for one JST date, chronological, ties by id.
func (s *Store) ListEvents(userID uint, date timeutil.Date) ([]models.AttendanceEvent, error) {
	from, to := timeutil.DayBounds(date)

	var events []models.AttendanceEvent
	err := s.readWithRetry(func() error {
		events = nil
		return s.db.
			Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
			Order("timestamp ASC, id ASC").
			Find(&events).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *Store) GetEvent(id uint) (models.AttendanceEvent, error) {
	var event models.AttendanceEvent
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AttendanceEvent{}, ledger.ErrEventNotFound
		}
		return models.AttendanceEvent{}, fmt.Errorf("failed to load event #%d: %w", id, err)
	}
	return event, nil
}

func (s *Store) InsertEvent(userID uint, kind models.EventKind, ts time.Time) (models.AttendanceEvent, error) {
	event := models.AttendanceEvent{
		UserID:    userID,
		Kind:      kind,
		Timestamp: ts.UTC(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return models.AttendanceEvent{}, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

// UpdateEventTime moves an event and records the pre-first-edit timestamp.
// The original timestamp is written once and never overwritten.
func (s *Store) UpdateEventTime(id uint, ts time.Time) (models.AttendanceEvent, error) {
	event, err := s.GetEvent(id)
	if err != nil {
		return models.AttendanceEvent{}, err
	}

	original := event.OriginalTimestamp
	if !event.Modified {
		prev := event.Timestamp
		original = &prev
	}

	updates := map[string]any{
		"timestamp":          ts.UTC(),
		"modified":           true,
		"original_timestamp": original,
	}
	if err := s.db.Model(&event).Updates(updates).Error; err != nil {
		return models.AttendanceEvent{}, fmt.Errorf("failed to update event #%d: %w", id, err)
	}
	return s.GetEvent(id)
}

func (s *Store) DeleteEvent(id uint) error {
	res := s.db.Delete(&models.AttendanceEvent{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete event #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ledger.ErrEventNotFound
	}
	return nil
}

func (s *Store) DeleteEventsForDate(userID uint, date timeutil.Date) error {
	from, to := timeutil.DayBounds(date)
	err := s.db.
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
		Delete(&models.AttendanceEvent{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete events for %s: %w", date, err)
	}
	return nil
}

// ListEventDates returns the distinct JST dates carrying events in [from, to],
// newest first. Dates are derived in Go because the canonical zone offsets the
// stored UTC instants.
func (s *Store) ListEventDates(userID uint, from, to timeutil.Date) ([]timeutil.Date, error) {
	lo, _ := timeutil.DayBounds(from)
	_, hi := timeutil.DayBounds(to)

	var timestamps []time.Time
	err := s.readWithRetry(func() error {
		timestamps = nil
		return s.db.Model(&models.AttendanceEvent{}).
			Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, lo, hi).
			Order("timestamp DESC").
			Pluck("timestamp", &timestamps).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list event dates: %w", err)
	}

	var dates []timeutil.Date
	seen := make(map[timeutil.Date]bool)
	for _, ts := range timestamps {
		d := timeutil.DateOf(ts)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// Transact runs fn against a store bound to one transaction.
func (s *Store) Transact(fn func(ledger.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// readWithRetry retries an idempotent read once on a transient failure.
func (s *Store) readWithRetry(fn func() error) error {
	err := fn()
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	slog.Warn("read failed, retrying once", "error", err)
	return fn()
}
