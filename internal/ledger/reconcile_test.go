package ledger

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
)

const testUser uint = 1

var testDate = timeutil.Date("2024-06-10")

// at builds an event at "HH:MM" JST on the test date.
func at(t *testing.T, id uint, kind models.EventKind, clock string) models.AttendanceEvent {
	t.Helper()
	var hour, minute int
	_, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute)
	require.NoError(t, err)
	return models.AttendanceEvent{
		ID:        id,
		UserID:    testUser,
		Kind:      kind,
		Timestamp: timeutil.Combine(testDate, timeutil.TimeOfDay{Hour: hour, Minute: minute}),
	}
}

func TestBuildSessionsAlternatingPairs(t *testing.T) {
	events := []models.AttendanceEvent{
		at(t, 1, models.KindStart, "09:00"),
		at(t, 2, models.KindEnd, "12:00"),
		at(t, 3, models.KindStart, "13:00"),
		at(t, 4, models.KindEnd, "18:00"),
	}

	sessions := BuildSessions(testUser, testDate, events)
	require.Len(t, sessions, 2)

	assert.True(t, sessions[0].Completed)
	assert.Equal(t, models.AnomalyNone, sessions[0].Anomaly)
	assert.Equal(t, 180, sessions[0].Minutes())

	assert.True(t, sessions[1].Completed)
	assert.Equal(t, models.AnomalyNone, sessions[1].Anomaly)
	assert.Equal(t, 300, sessions[1].Minutes())

	total := sessions[0].Minutes() + sessions[1].Minutes()
	assert.Equal(t, 480, total)
}

func TestBuildSessionsTrailingStartStaysOpen(t *testing.T) {
	events := []models.AttendanceEvent{
		at(t, 1, models.KindStart, "09:00"),
		at(t, 2, models.KindEnd, "12:00"),
		at(t, 3, models.KindStart, "13:00"),
	}

	sessions := BuildSessions(testUser, testDate, events)
	require.Len(t, sessions, 2)

	open := sessions[1]
	assert.False(t, open.Completed)
	assert.Nil(t, open.EndTime)
	assert.Nil(t, open.TotalMinutes)
	assert.Equal(t, models.AnomalyNone, open.Anomaly)
}

func TestBuildSessionsLeadingEndIsZeroDurationAnomaly(t *testing.T) {
	events := []models.AttendanceEvent{
		at(t, 1, models.KindEnd, "08:00"),
		at(t, 2, models.KindStart, "09:00"),
		at(t, 3, models.KindEnd, "17:00"),
	}

	sessions := BuildSessions(testUser, testDate, events)
	require.Len(t, sessions, 2)

	stray := sessions[0]
	assert.True(t, stray.Completed)
	assert.Equal(t, models.AnomalyMissingStart, stray.Anomaly)
	assert.Equal(t, 0, stray.Minutes())
	require.NotNil(t, stray.EndTime)
	assert.True(t, stray.StartTime.Equal(*stray.EndTime))

	assert.Equal(t, 480, sessions[1].Minutes())
	assert.Equal(t, models.AnomalyNone, sessions[1].Anomaly)
}

func TestBuildSessionsConsecutiveStartsImplicitlyClose(t *testing.T) {
	events := []models.AttendanceEvent{
		at(t, 1, models.KindStart, "09:00"),
		at(t, 2, models.KindStart, "13:00"),
		at(t, 3, models.KindEnd, "18:00"),
	}

	sessions := BuildSessions(testUser, testDate, events)
	require.Len(t, sessions, 2)

	abandoned := sessions[0]
	assert.False(t, abandoned.Completed)
	assert.Nil(t, abandoned.EndTime)
	assert.Equal(t, models.AnomalyImplicitClose, abandoned.Anomaly)

	closed := sessions[1]
	assert.True(t, closed.Completed)
	assert.Equal(t, 300, closed.Minutes())
}

func TestBuildSessionsEqualTimestampsProcessedInIDOrder(t *testing.T) {
	// Ties can only arise from an edit that slipped past validation. They
	// must not crash; id order decides.
	start := at(t, 2, models.KindStart, "10:00")
	end := at(t, 1, models.KindEnd, "10:00")

	sessions := BuildSessions(testUser, testDate, []models.AttendanceEvent{start, end})
	require.Len(t, sessions, 2)

	// The End (lower id) comes first with no open session, then the Start
	// stays open.
	assert.Equal(t, models.AnomalyMissingStart, sessions[0].Anomaly)
	assert.False(t, sessions[1].Completed)
}

func TestBuildSessionsEmpty(t *testing.T) {
	assert.Empty(t, BuildSessions(testUser, testDate, nil))
}

func TestBuildSessionsDeterministicUnderInsertionOrder(t *testing.T) {
	events := []models.AttendanceEvent{
		at(t, 1, models.KindStart, "09:00"),
		at(t, 2, models.KindEnd, "12:00"),
		at(t, 3, models.KindStart, "13:00"),
		at(t, 4, models.KindEnd, "18:00"),
		at(t, 5, models.KindStart, "19:30"),
	}

	expected := BuildSessions(testUser, testDate, events)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.AttendanceEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := BuildSessions(testUser, testDate, shuffled)
		require.Len(t, got, len(expected))
		for j := range expected {
			assert.True(t, expected[j].StartTime.Equal(got[j].StartTime))
			assert.Equal(t, expected[j].Completed, got[j].Completed)
			assert.Equal(t, expected[j].Anomaly, got[j].Anomaly)
			assert.Equal(t, expected[j].Minutes(), got[j].Minutes())
		}
	}
}

func TestBuildSessionsFloorsWholeMinutes(t *testing.T) {
	start := models.AttendanceEvent{
		ID: 1, UserID: testUser, Kind: models.KindStart,
		Timestamp: timeutil.Combine(testDate, timeutil.TimeOfDay{Hour: 9, Minute: 0}),
	}
	end := models.AttendanceEvent{
		ID: 2, UserID: testUser, Kind: models.KindEnd,
		Timestamp: start.Timestamp.Add(59*time.Minute + 45*time.Second),
	}

	sessions := BuildSessions(testUser, testDate, []models.AttendanceEvent{start, end})
	require.Len(t, sessions, 1)
	assert.Equal(t, 59, sessions[0].Minutes())
}
