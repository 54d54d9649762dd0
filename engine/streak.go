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

// StreakTracker maintains one continuation counter per (user, streak type)
// pair. Advancing is an atomic read-modify-write: the row is locked for the
// duration of the transaction so two concurrent events for the same key
// cannot both observe the pre-increment value.
type StreakTracker struct {
	db *gorm.DB
}

// NewStreakTracker creates a tracker over the shared database.
func NewStreakTracker(db *gorm.DB) *StreakTracker {
	return &StreakTracker{db: db}
}

// Advance credits one day of activity. Same-day repeats are no-ops, the day
// after the last activity extends the streak, anything later resets it to 1.
func (t *StreakTracker) Advance(ctx context.Context, userID uint, streakType models.StreakType, today time.Time) (models.Streak, error) {
	var streak models.Streak

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).
			Where("user_id = ? AND streak_type = ?", userID, streakType).
			First(&streak).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			day := DayOf(today)
			streak = models.Streak{
				UserID:           userID,
				StreakType:       streakType,
				CurrentStreak:    1,
				LongestStreak:    1,
				LastActivityDate: &day,
			}
			// A concurrent first event for the same key can win the insert;
			// the unique index turns ours into a same-day no-op.
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "streak_type"}},
				DoNothing: true,
			}).Create(&streak).Error
		}
		if err != nil {
			return err
		}

		if !advanceStreak(&streak, today) {
			return nil // already credited today
		}
		return tx.Save(&streak).Error
	})
	if err != nil {
		return models.Streak{}, fmt.Errorf("%w: advance streak: %v", ErrUnavailable, err)
	}
	return streak, nil
}

// advanceStreak applies the day-transition rules in place and reports
// whether the row changed. Comparison is by calendar day, never timestamp,
// so repeated events within one day stay idempotent.
func advanceStreak(s *models.Streak, today time.Time) bool {
	day := DayOf(today)

	if s.LastActivityDate != nil {
		switch {
		case SameDay(*s.LastActivityDate, day):
			return false
		case IsYesterday(*s.LastActivityDate, day):
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	} else {
		s.CurrentStreak = 1
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastActivityDate = &day
	return true
}

// Streaks returns every streak row for a user.
func (t *StreakTracker) Streaks(ctx context.Context, userID uint) ([]models.Streak, error) {
	var streaks []models.Streak
	if err := t.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("streak_type").Find(&streaks).Error; err != nil {
		return nil, fmt.Errorf("%w: list streaks: %v", ErrUnavailable, err)
	}
	return streaks, nil
}

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite rejects the clause; its single-writer model already serializes the
// in-memory test path.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
