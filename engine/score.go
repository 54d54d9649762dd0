package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumosocial/pulse/models"
)

// Accumulator is the write path for daily scores. Recording is additive and
// commutative: any ordering of the same actions yields the same final row.
type Accumulator struct {
	db *gorm.DB
}

// NewAccumulator creates an accumulator over the shared database.
func NewAccumulator(db *gorm.DB) *Accumulator {
	return &Accumulator{db: db}
}

// record applies one action to the (user, day) row inside the caller's
// transaction. The row is created on the first action of the day and locked
// while updated so concurrent events cannot drop an increment.
func (a *Accumulator) record(tx *gorm.DB, userID uint, kind models.ActionKind, multiplier int, today time.Time) (*models.DailyEngagement, error) {
	pts, ok := PointsFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action kind %q", ErrInvalidArgument, kind)
	}
	if multiplier < 1 {
		return nil, fmt.Errorf("%w: multiplier must be >= 1, got %d", ErrInvalidArgument, multiplier)
	}

	delta := pts * multiplier
	day := DayKey(today)

	var daily models.DailyEngagement
	err := forUpdate(tx).Where("user_id = ? AND date = ?", userID, day).First(&daily).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		daily = models.DailyEngagement{UserID: userID, Date: day, Score: delta}
		daily.AddAction(kind, multiplier)
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).Create(&daily)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			return &daily, nil
		}
		// Lost the insert race; reload the winner's row under lock.
		if err := forUpdate(tx).Where("user_id = ? AND date = ?", userID, day).First(&daily).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	daily.Score += delta
	daily.AddAction(kind, multiplier)
	if err := tx.Save(&daily).Error; err != nil {
		return nil, err
	}
	return &daily, nil
}

// Day returns the (user, day) row, or a zero-score projection when the user
// has no recorded activity for that day.
func (a *Accumulator) Day(ctx context.Context, userID uint, day string) (models.DailyEngagement, error) {
	var daily models.DailyEngagement
	err := a.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, day).First(&daily).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DailyEngagement{UserID: userID, Date: day}, nil
	}
	if err != nil {
		return models.DailyEngagement{}, fmt.Errorf("%w: load daily engagement: %v", ErrUnavailable, err)
	}
	return daily, nil
}

// EvaluateTiers grants every tier the current score has reached and that is
// not yet in the claimed set, low to high, marking each claimed as it is
// granted. A single jump past several thresholds grants them all at once;
// re-evaluating the same row grants nothing. The caller persists the row in
// the same transaction that applies the rewards.
func EvaluateTiers(daily *models.DailyEngagement) []Reward {
	var rewards []Reward
	for _, tier := range tiers {
		if daily.Score < tier.Threshold || daily.TierClaimed(tier.Name) {
			continue
		}
		daily.ClaimTier(tier.Name)
		rewards = append(rewards, Reward{
			Type:   models.RewardHearts,
			Amount: tier.Hearts,
			Reason: fmt.Sprintf("daily tier %s reached (%d points)", tier.Name, tier.Threshold),
		})
		if tier.Achievement != "" {
			rewards = append(rewards, Reward{
				Type:        models.RewardAchievement,
				Achievement: tier.Achievement,
				Reason:      fmt.Sprintf("daily tier %s reached", tier.Name),
			})
		}
	}
	return rewards
}
