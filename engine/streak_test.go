package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumosocial/pulse/models"
)

func TestAdvanceCreatesStreak(t *testing.T) {
	db := testDB(t)
	tracker := NewStreakTracker(db)

	streak, err := tracker.Advance(context.Background(), 1, models.StreakLogin, day1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
	require.NotNil(t, streak.LastActivityDate)
	assert.True(t, SameDay(*streak.LastActivityDate, day1))
}

func TestAdvanceSameDayIsNoOp(t *testing.T) {
	db := testDB(t)
	tracker := NewStreakTracker(db)
	ctx := context.Background()

	_, err := tracker.Advance(ctx, 1, models.StreakLogin, day1)
	require.NoError(t, err)

	// Later the same day, different timestamp
	again, err := tracker.Advance(ctx, 1, models.StreakLogin, day1.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, again.CurrentStreak)
	assert.Equal(t, 1, again.LongestStreak)
}

func TestAdvanceConsecutiveDayIncrements(t *testing.T) {
	db := testDB(t)
	tracker := NewStreakTracker(db)
	ctx := context.Background()

	_, err := tracker.Advance(ctx, 1, models.StreakPost, day1)
	require.NoError(t, err)

	streak, err := tracker.Advance(ctx, 1, models.StreakPost, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, streak.CurrentStreak)
	assert.Equal(t, 2, streak.LongestStreak)
}

func TestAdvanceGapResetsCurrentOnly(t *testing.T) {
	db := testDB(t)
	tracker := NewStreakTracker(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tracker.Advance(ctx, 1, models.StreakStory, day1.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	streak, err := tracker.Advance(ctx, 1, models.StreakStory, day1.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak, "longest survives the reset")
}

func TestStreakTypesAreIndependent(t *testing.T) {
	db := testDB(t)
	tracker := NewStreakTracker(db)
	ctx := context.Background()

	_, err := tracker.Advance(ctx, 1, models.StreakLogin, day1)
	require.NoError(t, err)
	_, err = tracker.Advance(ctx, 1, models.StreakPost, day1)
	require.NoError(t, err)
	_, err = tracker.Advance(ctx, 2, models.StreakLogin, day1)
	require.NoError(t, err)

	streaks, err := tracker.Streaks(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, streaks, 2)
}

func TestAdvanceStreakNeverLowersLongest(t *testing.T) {
	day := func(n int) time.Time { return day1.AddDate(0, 0, n) }

	s := models.Streak{}
	sequence := []int{0, 1, 2, 3, 7, 8, 9, 20, 21}
	for _, n := range sequence {
		prevLongest := s.LongestStreak
		advanceStreak(&s, day(n))
		assert.GreaterOrEqual(t, s.LongestStreak, s.CurrentStreak)
		assert.GreaterOrEqual(t, s.LongestStreak, prevLongest)
	}
	assert.Equal(t, 4, s.LongestStreak)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestDayHelpers(t *testing.T) {
	// Day boundaries are UTC regardless of the input zone.
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2025, 3, 10, 22, 0, 0, 0, est) // 03:00 March 11 UTC

	assert.Equal(t, "2025-03-11", DayKey(late))
	assert.False(t, SameDay(late, day1))
	assert.True(t, IsYesterday(day1, late))

	// Month boundary
	endOfMonth := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	firstOfApril := time.Date(2025, 4, 1, 1, 0, 0, 0, time.UTC)
	assert.True(t, IsYesterday(endOfMonth, firstOfApril))
}
