package engine

import "github.com/lumosocial/pulse/models"

// actionPoints is the fixed per-kind score table.
var actionPoints = map[models.ActionKind]int{
	models.ActionLogin:       10,
	models.ActionPost:        25,
	models.ActionStory:       20,
	models.ActionInteraction: 5,
	models.ActionComment:     15,
	models.ActionReaction:    8,
	models.ActionHeartGiven:  12,
	models.ActionProfileView: 3,
}

// PointsFor returns the score value of an action kind. ok is false for
// kinds outside the fixed set.
func PointsFor(kind models.ActionKind) (int, bool) {
	pts, ok := actionPoints[kind]
	return pts, ok
}

// streakTypeFor maps an action kind to the streak it extends. Comments and
// reactions count toward the interaction streak; heart_given and
// profile_view score points but extend no streak.
func streakTypeFor(kind models.ActionKind) (models.StreakType, bool) {
	switch kind {
	case models.ActionLogin:
		return models.StreakLogin, true
	case models.ActionPost:
		return models.StreakPost, true
	case models.ActionStory:
		return models.StreakStory, true
	case models.ActionInteraction, models.ActionComment, models.ActionReaction:
		return models.StreakInteraction, true
	default:
		return "", false
	}
}

// Tier is one daily score checkpoint and its reward.
type Tier struct {
	Name        models.TierName `json:"name"`
	Threshold   int             `json:"threshold"`
	Hearts      int             `json:"hearts"`
	Achievement string          `json:"achievement,omitempty"`
}

// tiers are evaluated low to high; reaching a score grants every
// not-yet-claimed tier at or below it in the same evaluation.
var tiers = []Tier{
	{Name: models.TierActiveUser, Threshold: 50, Hearts: 2},
	{Name: models.TierSuperActive, Threshold: 150, Hearts: 5},
	{Name: models.TierPowerUser, Threshold: 300, Hearts: 10, Achievement: "power_user"},
}

// Tiers returns the fixed tier table in ascending threshold order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// NextTier returns the lowest tier whose threshold the score has not yet
// reached, for "N points to go" displays. ok is false past the top tier.
func NextTier(score int) (Tier, bool) {
	for _, t := range tiers {
		if score < t.Threshold {
			return t, true
		}
	}
	return Tier{}, false
}
