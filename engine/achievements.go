package engine

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumosocial/pulse/models"
)

// AchievementDefinition names one lifetime unlock and the stat thresholds
// that must all hold for it.
type AchievementDefinition struct {
	Type     string       `json:"type"`
	Required map[Stat]int `json:"required_stats"`
}

// achievementCatalog is the fixed rule table. Every required dimension must
// meet its threshold (logical AND) for the unlock to fire.
var achievementCatalog = []AchievementDefinition{
	{Type: "first_post", Required: map[Stat]int{StatPosts: 1}},
	{Type: "popular", Required: map[Stat]int{StatHearts: 50}},
	{Type: "networker", Required: map[Stat]int{StatFriends: 25}},
	{Type: "innovator", Required: map[Stat]int{StatProjects: 10}},
	{Type: "active_member", Required: map[Stat]int{StatDaysActive: 30}},
	{Type: "collaborator", Required: map[Stat]int{StatProjects: 5}},
	{Type: "influencer", Required: map[Stat]int{StatFriends: 100}},
	{Type: "leader", Required: map[Stat]int{StatPosts: 50, StatFriends: 50, StatHearts: 200}},
}

// AchievementCatalog returns the full achievement rule table.
func AchievementCatalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

// ValidateCatalogs rejects definitions whose requirement keys fall outside
// the closed stat set. Called once at engine construction.
func ValidateCatalogs() error {
	check := func(typ string, required map[Stat]int) error {
		for stat := range required {
			if _, ok := (StatsSnapshot{}).Value(stat); !ok {
				return fmt.Errorf("definition %s references unknown stat %q", typ, stat)
			}
		}
		return nil
	}
	for _, def := range achievementCatalog {
		if err := check(def.Type, def.Required); err != nil {
			return err
		}
	}
	for _, def := range BadgeCatalog() {
		if err := check(def.Type, def.Requirements); err != nil {
			return err
		}
	}
	return nil
}

// meets reports whether every required dimension is at or above threshold.
func meets(required map[Stat]int, stats StatsSnapshot) bool {
	for stat, threshold := range required {
		value, ok := stats.Value(stat)
		if !ok || value < threshold {
			return false
		}
	}
	return true
}

// AchievementEvaluator unlocks achievements from lifetime stats. It is
// re-run opportunistically after any streak or score update; redundant
// calls have no effect beyond the first successful unlock.
type AchievementEvaluator struct {
	db *gorm.DB
}

// NewAchievementEvaluator creates an evaluator over the shared database.
func NewAchievementEvaluator(db *gorm.DB) *AchievementEvaluator {
	return &AchievementEvaluator{db: db}
}

// Evaluate unlocks every definition whose thresholds the stats satisfy and
// that the user has not already earned. Returns newly unlocked types.
func (e *AchievementEvaluator) Evaluate(ctx context.Context, tx *gorm.DB, userID uint, stats StatsSnapshot) ([]string, error) {
	earned, err := e.earnedSet(tx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []string
	for _, def := range achievementCatalog {
		if earned[def.Type] || !meets(def.Required, stats) {
			continue
		}
		isNew, err := e.unlock(tx, userID, def.Type, time.Now())
		if err != nil {
			return nil, err
		}
		if isNew {
			unlocked = append(unlocked, def.Type)
		}
	}
	return unlocked, nil
}

// unlock appends the achievement row. The unique (user_id, achievement_type)
// index makes a concurrent duplicate a silent no-op rather than an error.
func (e *AchievementEvaluator) unlock(tx *gorm.DB, userID uint, achievementType string, earnedAt time.Time) (bool, error) {
	row := models.UserAchievement{
		UserID:          userID,
		AchievementType: achievementType,
		EarnedAt:        earnedAt,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_type"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (e *AchievementEvaluator) earnedSet(tx *gorm.DB, userID uint) (map[string]bool, error) {
	var types []string
	if err := tx.Model(&models.UserAchievement{}).Where("user_id = ?", userID).
		Pluck("achievement_type", &types).Error; err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(types))
	for _, t := range types {
		earned[t] = true
	}
	return earned, nil
}

// Earned lists a user's achievements, newest first.
func (e *AchievementEvaluator) Earned(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	if err := e.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("earned_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list achievements: %v", ErrUnavailable, err)
	}
	return rows, nil
}
