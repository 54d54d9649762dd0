package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumosocial/pulse/models"
)

// Engine wires the engagement components behind one entry point. It holds
// no per-process counters: every call derives its state from the persisted
// rows, so any number of instances can run against the same database.
type Engine struct {
	db           *gorm.DB
	clock        Clock
	stats        StatsProvider
	streaks      *StreakTracker
	scores       *Accumulator
	achievements *AchievementEvaluator
	issuer       *Issuer
	log          *zap.SugaredLogger
}

// New constructs an engine. rdb may be nil (notification and social-score
// signals are then skipped). Fails when a catalog definition references an
// unknown stat.
func New(db *gorm.DB, rdb *redis.Client, clock Clock, stats StatsProvider, log *zap.SugaredLogger) (*Engine, error) {
	if err := ValidateCatalogs(); err != nil {
		return nil, err
	}
	achievements := NewAchievementEvaluator(db)
	return &Engine{
		db:           db,
		clock:        clock,
		stats:        stats,
		streaks:      NewStreakTracker(db),
		scores:       NewAccumulator(db),
		achievements: achievements,
		issuer:       NewIssuer(db, rdb, log, achievements),
		log:          log,
	}, nil
}

// Event is one inbound user-activity event.
type Event struct {
	UserID     uint
	Kind       models.ActionKind
	OccurredOn time.Time         // zero value means "now"
	Multiplier int               // zero value means 1
	Metadata   map[string]string // open-ended, informational only
}

// Result reports everything one processed event changed.
type Result struct {
	Streak       *models.Streak         `json:"streak,omitempty"`
	Daily        models.DailyEngagement `json:"daily"`
	Rewards      []models.RewardLog     `json:"rewards"`
	Achievements []string               `json:"achievements"`
}

// Process runs the full pipeline for one event: streak advance for
// streak-qualifying kinds, score accumulation with tier evaluation and
// reward issuance in one transaction, then an opportunistic achievement
// re-check. Safe to retry end to end; every write is idempotent per key.
func (e *Engine) Process(ctx context.Context, ev Event) (Result, error) {
	if ev.UserID == 0 {
		return Result{}, fmt.Errorf("%w: missing user id", ErrInvalidArgument)
	}
	if _, ok := PointsFor(ev.Kind); !ok {
		return Result{}, fmt.Errorf("%w: unknown action kind %q", ErrInvalidArgument, ev.Kind)
	}
	multiplier := ev.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	if multiplier < 1 {
		return Result{}, fmt.Errorf("%w: multiplier must be >= 1, got %d", ErrInvalidArgument, multiplier)
	}
	today := ev.OccurredOn
	if today.IsZero() {
		today = e.clock.Now()
	}

	var result Result

	if streakType, ok := streakTypeFor(ev.Kind); ok {
		streak, err := e.streaks.Advance(ctx, ev.UserID, streakType, today)
		if err != nil {
			return Result{}, err
		}
		result.Streak = &streak
	}

	var granted []Reward
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		daily, err := e.scores.record(tx, ev.UserID, ev.Kind, multiplier, today)
		if err != nil {
			return err
		}
		granted = EvaluateTiers(daily)
		for _, reward := range granted {
			entry, err := e.issuer.Apply(tx, ev.UserID, reward)
			if err != nil {
				return err
			}
			result.Rewards = append(result.Rewards, entry)
		}
		if err := tx.Save(daily).Error; err != nil {
			return err
		}
		result.Daily = *daily
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: record engagement: %v", ErrUnavailable, err)
	}

	for _, reward := range granted {
		e.issuer.Notify(ctx, ev.UserID, reward)
	}

	unlocked, err := e.CheckAchievements(ctx, ev.UserID)
	if err != nil {
		return Result{}, err
	}
	result.Achievements = unlocked

	e.log.Debugw("event processed",
		"user_id", ev.UserID, "kind", ev.Kind, "multiplier", multiplier,
		"score", result.Daily.Score, "rewards", len(result.Rewards),
		"achievements", len(unlocked), "metadata", ev.Metadata)

	return result, nil
}

// CheckAchievements pulls a fresh stats snapshot and unlocks anything newly
// earned. Each unlock appends a social score boost to the reward ledger and
// signals the external score recompute.
func (e *Engine) CheckAchievements(ctx context.Context, userID uint) ([]string, error) {
	snap, err := e.stats.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []string
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unlocked, err = e.achievements.Evaluate(ctx, tx, userID, snap)
		if err != nil {
			return err
		}
		for _, typ := range unlocked {
			reward := Reward{
				Type:   models.RewardSocialScoreBoost,
				Reason: fmt.Sprintf("achievement %s unlocked", typ),
			}
			if _, err := e.issuer.Apply(tx, userID, reward); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: unlock achievements: %v", ErrUnavailable, err)
	}

	for _, typ := range unlocked {
		e.issuer.Notify(ctx, userID, Reward{
			Type:   models.RewardAchievement,
			Reason: fmt.Sprintf("achievement %s unlocked", typ),
		})
		e.issuer.SignalSocialScore(ctx, userID)
	}
	return unlocked, nil
}

// Today returns the daily engagement projection for the current day.
func (e *Engine) Today(ctx context.Context, userID uint) (models.DailyEngagement, error) {
	return e.scores.Day(ctx, userID, DayKey(e.clock.Now()))
}

// Streaks lists all streaks for a user.
func (e *Engine) Streaks(ctx context.Context, userID uint) ([]models.Streak, error) {
	return e.streaks.Streaks(ctx, userID)
}

// Achievements lists a user's earned achievements.
func (e *Engine) Achievements(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	return e.achievements.Earned(ctx, userID)
}

// RecentRewards lists the user's newest reward ledger entries.
func (e *Engine) RecentRewards(ctx context.Context, userID uint, limit int) ([]models.RewardLog, error) {
	return e.issuer.RecentRewards(ctx, userID, limit)
}

// BadgeProgress projects the whole badge catalog against a fresh stats
// snapshot. Read-only.
func (e *Engine) BadgeProgress(ctx context.Context, userID uint) ([]BadgeProgress, error) {
	snap, err := e.stats.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs := BadgeCatalog()
	out := make([]BadgeProgress, 0, len(defs))
	for _, def := range defs {
		out = append(out, Progress(def, snap))
	}
	return out, nil
}
