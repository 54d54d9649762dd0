package models

import "time"

// UserAchievement records a lifetime one-time unlock. The unique index on
// (user_id, achievement_type) is what makes duplicate unlock attempts a
// silent no-op under concurrent evaluation.
type UserAchievement struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index:idx_user_achievement,unique;not null" json:"user_id"`
	AchievementType string    `gorm:"size:64;index:idx_user_achievement,unique;not null" json:"achievement_type"`
	AchievementData string    `gorm:"type:text" json:"achievement_data,omitempty"` // free-form JSON payload
	EarnedAt        time.Time `json:"earned_at"`
	CreatedAt       time.Time `json:"created_at"`
}
