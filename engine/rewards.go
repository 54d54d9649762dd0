package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumosocial/pulse/models"
)

const (
	// NotificationChannel carries reward notifications for the
	// notification subsystem.
	NotificationChannel = "pulse:notifications"
	// SocialScorePendingKey is a Redis set of user ids whose external
	// social score is due for recomputation.
	SocialScorePendingKey = "pulse:social_score:pending"

	// notifyHeartsMin is the smallest hearts grant that emits a
	// notification.
	notifyHeartsMin = 2
)

// Reward is one grant decided by the tier or achievement logic, before it
// is applied to durable state.
type Reward struct {
	Type        models.RewardType `json:"type"`
	Amount      int               `json:"amount,omitempty"`
	Achievement string            `json:"achievement,omitempty"`
	Reason      string            `json:"reason"`
}

// Issuer applies rewards to the user's balance and ledger. Application is
// transactional; notification and social-score side effects run after
// commit and are fire-and-forget.
type Issuer struct {
	db           *gorm.DB
	rdb          *redis.Client
	log          *zap.SugaredLogger
	achievements *AchievementEvaluator
}

// NewIssuer creates an issuer. rdb may be nil, in which case the optional
// side effects are skipped.
func NewIssuer(db *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger, achievements *AchievementEvaluator) *Issuer {
	return &Issuer{db: db, rdb: rdb, log: log, achievements: achievements}
}

// Apply writes one reward inside the caller's transaction: a ledger entry
// always, plus the balance increment, achievement unlock, or social-score
// flag its type calls for.
func (i *Issuer) Apply(tx *gorm.DB, userID uint, reward Reward) (models.RewardLog, error) {
	entry := models.RewardLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		RewardType: reward.Type,
		Amount:     reward.Amount,
		Reason:     reward.Reason,
		EarnedAt:   time.Now(),
	}

	switch reward.Type {
	case models.RewardHearts:
		if err := i.ensureUser(tx, userID); err != nil {
			return models.RewardLog{}, err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("engagement_hearts", gorm.Expr("engagement_hearts + ?", reward.Amount)).Error; err != nil {
			return models.RewardLog{}, err
		}
	case models.RewardAchievement:
		if _, err := i.achievements.unlock(tx, userID, reward.Achievement, entry.EarnedAt); err != nil {
			return models.RewardLog{}, err
		}
	case models.RewardSocialScoreBoost:
		// Recompute is delegated externally; the post-commit signal is the
		// only effect beyond the ledger entry.
	default:
		return models.RewardLog{}, fmt.Errorf("%w: unknown reward type %q", ErrInvalidArgument, reward.Type)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return models.RewardLog{}, err
	}
	return entry, nil
}

// ensureUser creates the minimal engagement user row when the balance
// target does not exist yet.
func (i *Issuer) ensureUser(tx *gorm.DB, userID uint) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.User{ID: userID}).Error
}

// Notify publishes a reward notification. Failures are logged and
// swallowed: a lost notification must never roll back a granted reward.
func (i *Issuer) Notify(ctx context.Context, userID uint, reward Reward) {
	if i.rdb == nil {
		return
	}
	if reward.Type == models.RewardHearts && reward.Amount < notifyHeartsMin {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":     userID,
		"event":       "engagement_reward",
		"reward_type": reward.Type,
		"amount":      reward.Amount,
		"achievement": reward.Achievement,
		"reason":      reward.Reason,
	})
	if err != nil {
		return
	}
	if err := i.rdb.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		i.log.Warnf("notification publish failed user=%d: %v", userID, err)
	}
}

// SignalSocialScore marks a user's social score as due for recomputation by
// the external scoring subsystem. Best-effort.
func (i *Issuer) SignalSocialScore(ctx context.Context, userID uint) {
	if i.rdb == nil {
		return
	}
	if err := i.rdb.SAdd(ctx, SocialScorePendingKey, userID).Err(); err != nil {
		i.log.Warnf("social score signal failed user=%d: %v", userID, err)
	}
}

// RecentRewards lists a user's reward ledger entries, newest first.
func (i *Issuer) RecentRewards(ctx context.Context, userID uint, limit int) ([]models.RewardLog, error) {
	var rows []models.RewardLog
	if err := i.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("earned_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list rewards: %v", ErrUnavailable, err)
	}
	return rows, nil
}
