package models

import (
	"encoding/json"
	"time"
)

// ActionKind is one of the fixed tracked activity kinds.
type ActionKind string

const (
	ActionLogin       ActionKind = "login"
	ActionPost        ActionKind = "post"
	ActionStory       ActionKind = "story"
	ActionInteraction ActionKind = "interaction"
	ActionComment     ActionKind = "comment"
	ActionReaction    ActionKind = "reaction"
	ActionHeartGiven  ActionKind = "heart_given"
	ActionProfileView ActionKind = "profile_view"
)

// TierName identifies a daily score checkpoint.
type TierName string

const (
	TierActiveUser  TierName = "active_user"
	TierSuperActive TierName = "super_active"
	TierPowerUser   TierName = "power_user"
)

// DailyEngagement accumulates one user's weighted activity score for one
// calendar day. Actions and ClaimedTiers are JSON text columns; the date is
// stored as a YYYY-MM-DD string so equality comparisons behave the same
// across dialects and timezones.
type DailyEngagement struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index:idx_daily_user_date,unique;not null" json:"user_id"`
	Date         string    `gorm:"size:10;index:idx_daily_user_date,unique;not null" json:"date"`
	Score        int       `gorm:"default:0" json:"score"`
	Actions      string    `gorm:"type:text" json:"-"` // JSON map of action kind -> count
	ClaimedTiers string    `gorm:"type:text" json:"-"` // JSON array of claimed tier names
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ActionCounts decodes the per-kind action counters.
func (d *DailyEngagement) ActionCounts() map[ActionKind]int {
	counts := map[ActionKind]int{}
	if d.Actions != "" {
		_ = json.Unmarshal([]byte(d.Actions), &counts)
	}
	return counts
}

// AddAction increments the counter for kind by n and re-encodes the column.
func (d *DailyEngagement) AddAction(kind ActionKind, n int) {
	counts := d.ActionCounts()
	counts[kind] += n
	encoded, _ := json.Marshal(counts)
	d.Actions = string(encoded)
}

// ClaimedTierNames decodes the set of tiers already granted today.
func (d *DailyEngagement) ClaimedTierNames() []TierName {
	var names []TierName
	if d.ClaimedTiers != "" {
		_ = json.Unmarshal([]byte(d.ClaimedTiers), &names)
	}
	return names
}

// TierClaimed reports whether the named tier was already granted today.
func (d *DailyEngagement) TierClaimed(name TierName) bool {
	for _, n := range d.ClaimedTierNames() {
		if n == name {
			return true
		}
	}
	return false
}

// ClaimTier adds the named tier to the claimed set. Claiming twice is a no-op.
func (d *DailyEngagement) ClaimTier(name TierName) {
	if d.TierClaimed(name) {
		return
	}
	names := append(d.ClaimedTierNames(), name)
	encoded, _ := json.Marshal(names)
	d.ClaimedTiers = string(encoded)
}
