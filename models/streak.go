package models

import "time"

// StreakType identifies which activity a streak counts consecutive days for.
type StreakType string

const (
	StreakLogin       StreakType = "login"
	StreakPost        StreakType = "post"
	StreakStory       StreakType = "story"
	StreakInteraction StreakType = "interaction"
)

// Streak tracks consecutive activity days per user and activity type.
// LongestStreak never drops below CurrentStreak; rows are created on the
// first qualifying activity and never deleted.
type Streak struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index:idx_streaks_user_type,unique;not null" json:"user_id"`
	StreakType       StreakType `gorm:"size:32;index:idx_streaks_user_type,unique;not null" json:"streak_type"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
