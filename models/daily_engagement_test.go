package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionCountsRoundTrip(t *testing.T) {
	d := DailyEngagement{}
	assert.Empty(t, d.ActionCounts())

	d.AddAction(ActionPost, 1)
	d.AddAction(ActionComment, 3)
	d.AddAction(ActionPost, 2)

	counts := d.ActionCounts()
	assert.Equal(t, 3, counts[ActionPost])
	assert.Equal(t, 3, counts[ActionComment])
}

func TestClaimTierIsSetLike(t *testing.T) {
	d := DailyEngagement{}
	assert.False(t, d.TierClaimed(TierActiveUser))

	d.ClaimTier(TierActiveUser)
	d.ClaimTier(TierActiveUser)
	d.ClaimTier(TierSuperActive)

	assert.True(t, d.TierClaimed(TierActiveUser))
	assert.True(t, d.TierClaimed(TierSuperActive))
	assert.False(t, d.TierClaimed(TierPowerUser))
	assert.Len(t, d.ClaimedTierNames(), 2)
}
