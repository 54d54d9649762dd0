package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumosocial/pulse/models"
)

func TestFirstPostUnlocksAlone(t *testing.T) {
	db := testDB(t)
	stats := &fakeStats{snap: StatsSnapshot{Posts: 1}}
	eng := testEngine(t, db, stats, day1)

	unlocked, err := eng.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_post"}, unlocked)
}

func TestCheckAchievementsIdempotent(t *testing.T) {
	db := testDB(t)
	stats := &fakeStats{snap: StatsSnapshot{Posts: 1, Friends: 30}}
	eng := testEngine(t, db, stats, day1)
	ctx := context.Background()

	first, err := eng.CheckAchievements(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first_post", "networker"}, first)

	second, err := eng.CheckAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, second)

	var n int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", 1).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestLeaderRequiresEveryDimension(t *testing.T) {
	db := testDB(t)
	// posts and friends satisfied, hearts not: two of three is not enough
	stats := &fakeStats{snap: StatsSnapshot{Posts: 60, Friends: 60, Hearts: 10}}
	eng := testEngine(t, db, stats, day1)

	unlocked, err := eng.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.NotContains(t, unlocked, "leader")
	assert.Contains(t, unlocked, "first_post")
	assert.Contains(t, unlocked, "networker")
}

func TestLeaderUnlocksWhenAllMet(t *testing.T) {
	db := testDB(t)
	stats := &fakeStats{snap: StatsSnapshot{Posts: 50, Friends: 50, Hearts: 200}}
	eng := testEngine(t, db, stats, day1)

	unlocked, err := eng.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, unlocked, "leader")
}

func TestProjectThresholdsAreDistinct(t *testing.T) {
	db := testDB(t)
	stats := &fakeStats{snap: StatsSnapshot{Projects: 7}}
	eng := testEngine(t, db, stats, day1)

	unlocked, err := eng.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, unlocked, "collaborator")
	assert.NotContains(t, unlocked, "innovator")
}

func TestUnlockAppendsSocialScoreBoost(t *testing.T) {
	db := testDB(t)
	stats := &fakeStats{snap: StatsSnapshot{Posts: 1}}
	eng := testEngine(t, db, stats, day1)

	_, err := eng.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)

	var entries []models.RewardLog
	require.NoError(t, db.Where("user_id = ?", 1).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.RewardSocialScoreBoost, entries[0].RewardType)
	assert.Contains(t, entries[0].Reason, "first_post")
}

func TestDuplicateUnlockIsSilentNoOp(t *testing.T) {
	db := testDB(t)
	evaluator := NewAchievementEvaluator(db)

	isNew, err := evaluator.unlock(db, 1, "popular", day1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = evaluator.unlock(db, 1, "popular", day1)
	require.NoError(t, err)
	assert.False(t, isNew, "duplicate insert must not error")
}

func TestValidateCatalogs(t *testing.T) {
	require.NoError(t, ValidateCatalogs())
	assert.Len(t, AchievementCatalog(), 8)
}
