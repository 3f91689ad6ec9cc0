// Package ledgertest provides an in-memory ledger.Store for tests, so the
// core packages can be exercised without a database file.
package ledgertest

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// MemStore keeps events and sessions in maps. Transact snapshots state and
// restores it when the callback fails, mirroring a rolled-back transaction.
type MemStore struct {
	mu          sync.Mutex
	nextEventID uint
	events      map[uint]models.AttendanceEvent
	sessions    map[string][]models.WorkSession

	// InsertErr, when set, fails the next InsertEvent. Lets tests exercise
	// rollback behavior.
	InsertErr error
}

func NewMemStore() *MemStore {
	return &MemStore{
		events:   make(map[uint]models.AttendanceEvent),
		sessions: make(map[string][]models.WorkSession),
	}
}

func sessionKey(userID uint, date timeutil.Date) string {
	return fmt.Sprintf("%d|%s", userID, date)
}

func (m *MemStore) ListEvents(userID uint, date timeutil.Date) ([]models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, to := timeutil.DayBounds(date)
	var out []models.AttendanceEvent
	for _, ev := range m.events {
		if ev.UserID == userID && !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) GetEvent(id uint) (models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[id]
	if !ok {
		return models.AttendanceEvent{}, ledger.ErrEventNotFound
	}
	return ev, nil
}

func (m *MemStore) InsertEvent(userID uint, kind models.EventKind, ts time.Time) (models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		err := m.InsertErr
		m.InsertErr = nil
		return models.AttendanceEvent{}, err
	}

	m.nextEventID++
	now := time.Now()
	ev := models.AttendanceEvent{
		ID:        m.nextEventID,
		UserID:    userID,
		Kind:      kind,
		Timestamp: ts.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.events[ev.ID] = ev
	return ev, nil
}

func (m *MemStore) UpdateEventTime(id uint, ts time.Time) (models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[id]
	if !ok {
		return models.AttendanceEvent{}, ledger.ErrEventNotFound
	}
	if !ev.Modified {
		prev := ev.Timestamp
		ev.OriginalTimestamp = &prev
		ev.Modified = true
	}
	ev.Timestamp = ts.UTC()
	ev.UpdatedAt = time.Now()
	m.events[id] = ev
	return ev, nil
}

func (m *MemStore) DeleteEvent(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ledger.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MemStore) DeleteEventsForDate(userID uint, date timeutil.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, to := timeutil.DayBounds(date)
	for id, ev := range m.events {
		if ev.UserID == userID && !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			delete(m.events, id)
		}
	}
	return nil
}

func (m *MemStore) ReplaceSessions(userID uint, date timeutil.Date, sessions []models.WorkSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]models.WorkSession, len(sessions))
	copy(stored, sessions)
	m.sessions[sessionKey(userID, date)] = stored
	return nil
}

func (m *MemStore) ListSessions(userID uint, from, to timeutil.Date) ([]models.WorkSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.WorkSession
	for _, sessions := range m.sessions {
		for _, s := range sessions {
			if s.UserID == userID && !s.Date.Before(from) && !to.Before(s.Date) {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (m *MemStore) ListEventDates(userID uint, from, to timeutil.Date) ([]timeutil.Date, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[timeutil.Date]bool)
	for _, ev := range m.events {
		if ev.UserID != userID {
			continue
		}
		d := timeutil.DateOf(ev.Timestamp)
		if !d.Before(from) && !to.Before(d) {
			seen[d] = true
		}
	}
	var dates []timeutil.Date
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[j].Before(dates[i]) })
	return dates, nil
}

// Transact snapshots the store and rolls back when fn fails.
func (m *MemStore) Transact(fn func(ledger.Store) error) error {
	m.mu.Lock()
	eventsBackup := make(map[uint]models.AttendanceEvent, len(m.events))
	for k, v := range m.events {
		eventsBackup[k] = v
	}
	sessionsBackup := make(map[string][]models.WorkSession, len(m.sessions))
	for k, v := range m.sessions {
		cp := make([]models.WorkSession, len(v))
		copy(cp, v)
		sessionsBackup[k] = cp
	}
	nextID := m.nextEventID
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.events = eventsBackup
		m.sessions = sessionsBackup
		m.nextEventID = nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

// Sessions returns the stored session set for one user and date.
func (m *MemStore) Sessions(userID uint, date timeutil.Date) []models.WorkSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionKey(userID, date)]
}

// EventCount returns how many events the store holds.
func (m *MemStore) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
