package ledger

import (
	"log/slog"
	"sort"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// BuildSessions derives the canonical session set for one date from its raw
// events. The result depends only on the chronological order of the events,
// never on their insertion order.
//
// Pairing rules:
//   - Start opens a session. A Start while one is open abandons the open
//     session as an implicit-close anomaly (left open-ended, flagged) and
//     opens a new one.
//   - End closes the open session. An End with nothing open becomes a
//     zero-duration missing-start anomaly so the stray record stays visible.
//   - A session still open after the last event is kept as incomplete.
//
// Durations truncate to whole minutes; a negative raw difference is clamped
// to zero and flagged.
func BuildSessions(userID uint, date timeutil.Date, events []models.AttendanceEvent) []models.WorkSession {
	sorted := make([]models.AttendanceEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) {
			// Exact duplicates are rejected at insert time; a tie means an
			// edit slipped past validation. Keep going in id order.
			slog.Warn("duplicate event timestamps during reconciliation",
				"user_id", userID, "date", string(date),
				"event_id", sorted[i-1].ID, "other_event_id", sorted[i].ID)
		}
	}

	var sessions []models.WorkSession
	var open *models.WorkSession

	for _, ev := range sorted {
		switch ev.Kind {
		case models.KindStart:
			if open != nil {
				open.Anomaly = models.AnomalyImplicitClose
				sessions = append(sessions, *open)
			}
			open = &models.WorkSession{
				UserID:    userID,
				Date:      date,
				StartTime: ev.Timestamp,
			}
		case models.KindEnd:
			if open != nil {
				end := ev.Timestamp
				minutes := int(end.Sub(open.StartTime).Minutes())
				if minutes < 0 {
					minutes = 0
					open.Anomaly = models.AnomalyNegativeDuration
				}
				open.EndTime = &end
				open.TotalMinutes = &minutes
				open.Completed = true
				sessions = append(sessions, *open)
				open = nil
			} else {
				end := ev.Timestamp
				zero := 0
				sessions = append(sessions, models.WorkSession{
					UserID:       userID,
					Date:         date,
					StartTime:    ev.Timestamp,
					EndTime:      &end,
					TotalMinutes: &zero,
					Completed:    true,
					Anomaly:      models.AnomalyMissingStart,
				})
			}
		}
	}

	if open != nil {
		sessions = append(sessions, *open)
	}
	return sessions
}

// Reconcile rebuilds and stores the session set for one user and date. It
// must run inside the same transaction as the mutation that made the stored
// set stale.
func Reconcile(store Store, userID uint, date timeutil.Date) error {
	events, err := store.ListEvents(userID, date)
	if err != nil {
		return err
	}
	return store.ReplaceSessions(userID, date, BuildSessions(userID, date, events))
}
