package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/ledger/ledgertest"
	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

const userID uint = 7

// fixedClock pins the service to one instant; tests advance it explicitly.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture() (*ledger.Service, *ledgertest.MemStore, *fixedClock) {
	store := ledgertest.NewMemStore()
	clock := &fixedClock{now: timeutil.Combine("2024-06-10", timeutil.TimeOfDay{Hour: 9, Minute: 0})}
	return ledger.NewService(store, clock), store, clock
}

func TestStartEndProducesSession(t *testing.T) {
	svc, store, clock := newFixture()
	date := timeutil.Today(clock)

	_, err := svc.Start(userID)
	require.NoError(t, err)

	clock.advance(3 * time.Hour)
	_, minutes, err := svc.End(userID)
	require.NoError(t, err)
	assert.Equal(t, 180, minutes)

	sessions := store.Sessions(userID, date)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Completed)
	assert.Equal(t, 180, sessions[0].Minutes())
}

func TestStartTwiceFails(t *testing.T) {
	svc, _, clock := newFixture()

	_, err := svc.Start(userID)
	require.NoError(t, err)

	clock.advance(time.Minute)
	_, err = svc.Start(userID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyWorking)
}

func TestEndWithoutStartFails(t *testing.T) {
	svc, _, _ := newFixture()

	_, _, err := svc.End(userID)
	assert.ErrorIs(t, err, ledger.ErrNotWorking)
}

func TestStartAfterCompletedPairStartsSecondSession(t *testing.T) {
	svc, store, clock := newFixture()
	date := timeutil.Today(clock)

	_, err := svc.Start(userID)
	require.NoError(t, err)
	clock.advance(3 * time.Hour)
	_, _, err = svc.End(userID)
	require.NoError(t, err)

	clock.advance(time.Hour)
	_, err = svc.Start(userID)
	require.NoError(t, err)

	sessions := store.Sessions(userID, date)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Completed)
	assert.False(t, sessions[1].Completed)
}

func TestEditRoundTripPreservesOriginalTimestamp(t *testing.T) {
	svc, _, clock := newFixture()

	event, err := svc.Start(userID)
	require.NoError(t, err)
	firstTimestamp := event.Timestamp

	clock.advance(4 * time.Hour)

	edited, err := svc.EditEventTime(event.ID, firstTimestamp.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.True(t, edited.Modified)
	require.NotNil(t, edited.OriginalTimestamp)
	assert.True(t, edited.OriginalTimestamp.Equal(firstTimestamp))

	// A second edit keeps the pre-first-edit original.
	edited, err = svc.EditEventTime(event.ID, firstTimestamp.Add(-60*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, edited.OriginalTimestamp)
	assert.True(t, edited.OriginalTimestamp.Equal(firstTimestamp))
}

func TestEditRecomputesSessions(t *testing.T) {
	// 09:00-12:00 and 13:00-18:00, then the 09:00 start is corrected to
	// 08:30 and the daily total grows to 510.
	svc, store, clock := newFixture()
	date := timeutil.Today(clock)

	start1, err := svc.Start(userID)
	require.NoError(t, err)
	clock.advance(3 * time.Hour)
	_, _, err = svc.End(userID)
	require.NoError(t, err)
	clock.advance(time.Hour)
	_, err = svc.Start(userID)
	require.NoError(t, err)
	clock.advance(5 * time.Hour)
	_, _, err = svc.End(userID)
	require.NoError(t, err)

	total := func() int {
		sum := 0
		for _, s := range store.Sessions(userID, date) {
			sum += s.Minutes()
		}
		return sum
	}
	require.Equal(t, 480, total())

	_, err = svc.EditEventTime(start1.ID, start1.Timestamp.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 510, total())
}

func TestDeleteEndCreatesImplicitClose(t *testing.T) {
	// Deleting the 12:00 End leaves [08:30 Start, 13:00 Start, 18:00 End]:
	// the first session becomes open-ended and flagged, the second closes.
	svc, store, clock := newFixture()
	date := timeutil.Today(clock)

	_, err := svc.Start(userID)
	require.NoError(t, err)
	clock.advance(3 * time.Hour)
	end1, _, err := svc.End(userID)
	require.NoError(t, err)
	clock.advance(time.Hour)
	_, err = svc.Start(userID)
	require.NoError(t, err)
	clock.advance(5 * time.Hour)
	_, _, err = svc.End(userID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(end1.ID))

	sessions := store.Sessions(userID, date)
	require.Len(t, sessions, 2)
	assert.Equal(t, models.AnomalyImplicitClose, sessions[0].Anomaly)
	assert.False(t, sessions[0].Completed)
	assert.True(t, sessions[1].Completed)
	assert.Equal(t, 300, sessions[1].Minutes())
}

func TestEditAcrossDatesReconcilesBoth(t *testing.T) {
	svc, store, clock := newFixture()
	oldDate := timeutil.Today(clock)
	newDate := oldDate.AddDays(-1)

	event, err := svc.Start(userID)
	require.NoError(t, err)
	require.Len(t, store.Sessions(userID, oldDate), 1)

	moved := timeutil.Combine(newDate, timeutil.TimeOfDay{Hour: 22, Minute: 0})
	_, err = svc.EditEventTime(event.ID, moved)
	require.NoError(t, err)

	assert.Empty(t, store.Sessions(userID, oldDate))
	require.Len(t, store.Sessions(userID, newDate), 1)
}

func TestAddEventValidates(t *testing.T) {
	svc, _, clock := newFixture()

	event, err := svc.Start(userID)
	require.NoError(t, err)
	clock.advance(time.Hour)

	var vErr *ledger.ValidationError
	_, err = svc.AddEvent(userID, models.KindEnd, event.Timestamp)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ledger.ReasonDuplicateTimestamp, vErr.Reason)

	_, err = svc.AddEvent(userID, models.EventKind("break"), clock.Now())
	assert.ErrorIs(t, err, ledger.ErrUnknownEventKind)
}

func TestDeleteDayClearsSessions(t *testing.T) {
	svc, store, clock := newFixture()
	date := timeutil.Today(clock)

	_, err := svc.Start(userID)
	require.NoError(t, err)
	clock.advance(time.Hour)
	_, _, err = svc.End(userID)
	require.NoError(t, err)
	require.NotEmpty(t, store.Sessions(userID, date))

	require.NoError(t, svc.DeleteDay(userID, date))
	assert.Empty(t, store.Sessions(userID, date))
	assert.Equal(t, 0, store.EventCount())
}

func TestFailedMutationRollsBack(t *testing.T) {
	svc, store, clock := newFixture()
	date := timeutil.Today(clock)

	store.InsertErr = errors.New("disk full")
	_, err := svc.Start(userID)
	require.Error(t, err)

	assert.Equal(t, 0, store.EventCount())
	assert.Empty(t, store.Sessions(userID, date))
}

func TestHistoryDates(t *testing.T) {
	svc, _, clock := newFixture()

	_, err := svc.Start(userID)
	require.NoError(t, err)
	clock.advance(time.Hour)
	_, _, err = svc.End(userID)
	require.NoError(t, err)

	clock.advance(24 * time.Hour)
	_, err = svc.Start(userID)
	require.NoError(t, err)

	dates, err := svc.HistoryDates(userID)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	// Newest first.
	assert.True(t, dates[1].Before(dates[0]))
}
