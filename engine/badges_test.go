package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCapsEachDimension(t *testing.T) {
	def := BadgeDefinition{
		Type:         "leader",
		Requirements: map[Stat]int{StatPosts: 50, StatFriends: 50, StatHearts: 200},
	}
	stats := StatsSnapshot{Posts: 60, Friends: 25, Hearts: 100}

	p := Progress(def, stats)
	assert.Equal(t, 175, p.Current) // 50 capped + 25 + 100
	assert.Equal(t, 300, p.Max)
	assert.InDelta(t, 58.33, p.Percentage, 0.01)
}

func TestProgressEmptyDefinition(t *testing.T) {
	p := Progress(BadgeDefinition{Type: "empty"}, StatsSnapshot{Posts: 10})
	assert.Zero(t, p.Current)
	assert.Zero(t, p.Max)
	assert.Zero(t, p.Percentage)
}

// Percentage must hit 100 exactly when the achievement evaluator would
// unlock the same definition.
func TestProgressConsistentWithUnlocking(t *testing.T) {
	snapshots := []StatsSnapshot{
		{},
		{Posts: 1},
		{Posts: 49, Friends: 50, Hearts: 200},
		{Posts: 50, Friends: 50, Hearts: 200},
		{Posts: 500, Friends: 500, Hearts: 500, Comments: 500, Projects: 500, DaysActive: 500},
		{Friends: 25},
		{Friends: 100},
		{Projects: 5},
		{Projects: 10},
		{DaysActive: 30},
		{Hearts: 50},
	}

	for _, def := range BadgeCatalog() {
		for _, snap := range snapshots {
			p := Progress(def, snap)
			wouldUnlock := meets(def.Requirements, snap)
			if wouldUnlock {
				assert.Equal(t, 100.0, p.Percentage, "%s should be complete for %+v", def.Type, snap)
			} else {
				assert.Less(t, p.Percentage, 100.0, "%s should be incomplete for %+v", def.Type, snap)
			}
		}
	}
}

func TestBadgeCatalogMirrorsAchievements(t *testing.T) {
	badges := BadgeCatalog()
	achievements := AchievementCatalog()
	require.Len(t, badges, len(achievements))
	for i, b := range badges {
		assert.Equal(t, achievements[i].Type, b.Type)
		assert.Equal(t, achievements[i].Required, b.Requirements)
	}
}

func TestNextTier(t *testing.T) {
	next, ok := NextTier(0)
	require.True(t, ok)
	assert.EqualValues(t, "active_user", next.Name)

	next, ok = NextTier(60)
	require.True(t, ok)
	assert.EqualValues(t, "super_active", next.Name)

	_, ok = NextTier(300)
	assert.False(t, ok)
}
