package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekiatscis/GymBot/attendance"
	"github.com/weekiatscis/GymBot/attendance/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func answer(userID int64, name string, options ...int) attendance.AnswerEvent {
	return attendance.AnswerEvent{
		EventID:       "ev-test",
		UserID:        userID,
		UserName:      name,
		ChosenOptions: options,
	}
}

func utc(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// =============================================================================
// OPTION MAPPING
// =============================================================================

func TestRecorder_FirstOption_MeansAttended(t *testing.T) {
	// GIVEN: A poll answer choosing the first option
	// WHEN: The answer is recorded
	// THEN: The fact is attended=true with the caller's civil day

	recorder := attendance.NewRecorder(store.NewMemory())
	day := attendance.Date(2025, time.March, 10)

	fact, err := recorder.Record(context.Background(), answer(1, "Alex", 0), utc(2025, time.March, 10, 12), day)

	require.NoError(t, err)
	assert.True(t, fact.Attended)
	assert.Equal(t, "Alex", fact.UserName)
	assert.Equal(t, "2025-03-10", fact.Date.String())
}

func TestRecorder_SecondOption_MeansNotAttended(t *testing.T) {
	recorder := attendance.NewRecorder(store.NewMemory())
	day := attendance.Date(2025, time.March, 10)

	fact, err := recorder.Record(context.Background(), answer(1, "Alex", 1), utc(2025, time.March, 10, 12), day)

	require.NoError(t, err)
	assert.False(t, fact.Attended)
}

// =============================================================================
// UPSERT IDEMPOTENCE
// =============================================================================

func TestRecorder_SameDaySecondAnswer_Overwrites(t *testing.T) {
	// GIVEN: Alex already answered "yes" today
	// WHEN: Alex answers "no" for the same day
	// THEN: Exactly one fact exists, equal to the second answer

	ledger := store.NewMemory()
	recorder := attendance.NewRecorder(ledger)
	ctx := context.Background()
	day := attendance.Date(2025, time.March, 10)

	_, err := recorder.Record(ctx, answer(1, "Alex", 0), utc(2025, time.March, 10, 12), day)
	require.NoError(t, err)
	_, err = recorder.Record(ctx, answer(1, "Alex", 1), utc(2025, time.March, 10, 13), day)
	require.NoError(t, err)

	facts, err := ledger.QueryRange(ctx, day, day, false)
	require.NoError(t, err)
	require.Len(t, facts, 1, "second answer must replace the first")
	assert.False(t, facts[0].Attended)
	assert.Equal(t, utc(2025, time.March, 10, 13), facts[0].RecordedAt)
}

func TestRecorder_DifferentDays_BothKept(t *testing.T) {
	ledger := store.NewMemory()
	recorder := attendance.NewRecorder(ledger)
	ctx := context.Background()

	_, err := recorder.Record(ctx, answer(1, "Alex", 0), utc(2025, time.March, 10, 12), attendance.Date(2025, time.March, 10))
	require.NoError(t, err)
	_, err = recorder.Record(ctx, answer(1, "Alex", 1), utc(2025, time.March, 11, 12), attendance.Date(2025, time.March, 11))
	require.NoError(t, err)

	facts, err := ledger.QueryRange(ctx, attendance.Date(2025, time.March, 10), attendance.Date(2025, time.March, 11), false)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

// =============================================================================
// MALFORMED EVENTS
// =============================================================================

func TestRecorder_MalformedEvents_RejectedWithoutWrite(t *testing.T) {
	ledger := store.NewMemory()
	recorder := attendance.NewRecorder(ledger)
	ctx := context.Background()
	day := attendance.Date(2025, time.March, 10)
	now := utc(2025, time.March, 10, 12)

	tests := []struct {
		name string
		ev   attendance.AnswerEvent
	}{
		{"no chosen options", answer(1, "Alex")},
		{"multiple chosen options", answer(1, "Alex", 0, 1)},
		{"missing user id", answer(0, "Alex", 0)},
		{"missing user name", answer(1, "", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recorder.Record(ctx, tt.ev, now, day)

			assert.Error(t, err)
			assert.True(t, attendance.IsMalformedEvent(err))
			var malformed *attendance.MalformedEventError
			assert.ErrorAs(t, err, &malformed)
		})
	}

	facts, err := ledger.QueryRange(ctx, day, day, false)
	require.NoError(t, err)
	assert.Empty(t, facts, "malformed events must never touch the ledger")
}

// =============================================================================
// ACKNOWLEDGEMENT
// =============================================================================

func TestAck_ReflectsAttendance(t *testing.T) {
	attended := attendance.AttendanceFact{UserName: "Alex", Attended: true}
	skipped := attendance.AttendanceFact{UserName: "Bo", Attended: false}

	assert.Equal(t, "Alex: Nice work! 💪", attendance.Ack(attended))
	assert.Equal(t, "Bo: Get after it tomorrow! 😤", attendance.Ack(skipped))
}
