package ledger

import (
	"time"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

// maxCorrectionAge bounds how far back a correction may reach.
const maxCorrectionAge = 7 * 24 * time.Hour

// ValidateNewEvent checks a candidate timestamp against a date's existing
// events. excludeID names the event being edited (0 for a brand-new event) so
// it does not collide with itself.
//
// Only exact timestamp collisions and implausible instants are rejected here.
// Ordering problems (an End before any Start, consecutive Starts) are not
// errors: reconciliation turns them into flagged anomaly sessions instead.
func ValidateNewEvent(existing []models.AttendanceEvent, candidate time.Time, excludeID uint, now time.Time) error {
	if candidate.After(now) {
		return newValidationError(ReasonTimeInFuture,
			"cannot record a future time (%s)", timeutil.FormatClock(candidate))
	}

	date := timeutil.DateOf(candidate)
	today := timeutil.DateOf(now)
	if today.Time().Sub(date.Time()) > maxCorrectionAge {
		return newValidationError(ReasonDateTooOld,
			"cannot record more than 7 days back (%s)", date)
	}

	for _, ev := range existing {
		if excludeID != 0 && ev.ID == excludeID {
			continue
		}
		if ev.Timestamp.Equal(candidate) {
			return newValidationError(ReasonDuplicateTimestamp,
				"a record at %s already exists", timeutil.FormatClock(candidate))
		}
	}
	return nil
}
