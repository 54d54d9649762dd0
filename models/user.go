package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the engagement-facing view of a user. EngagementHearts is the
// reward currency balance owned by this service; it is distinct from
// user-to-user profile hearts, which live with the social subsystems.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:64" json:"username"`
	EngagementHearts int       `gorm:"default:0" json:"engagement_hearts"`
	SocialScore      int       `gorm:"default:0" json:"social_score"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
