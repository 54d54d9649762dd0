package models

import "time"

// RewardType classifies an entry in the engagement reward ledger.
type RewardType string

const (
	RewardHearts           RewardType = "hearts"
	RewardAchievement      RewardType = "achievement"
	RewardSocialScoreBoost RewardType = "social_score_boost"
)

// RewardLog is the append-only ledger of reward grants. It is the durable
// answer to "has this already been granted" and feeds the recent-rewards
// display.
type RewardLog struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"` // UUID
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	RewardType RewardType `gorm:"size:32;not null" json:"reward_type"`
	Amount     int        `json:"amount"`
	Reason     string     `gorm:"size:255" json:"reason"`
	EarnedAt   time.Time  `gorm:"index" json:"earned_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
