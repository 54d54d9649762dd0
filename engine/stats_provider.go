package engine

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumosocial/pulse/models"
)

// DBStatsProvider aggregates a stats snapshot from the tables owned by the
// content and social-graph subsystems. This service only ever reads them.
type DBStatsProvider struct {
	db *gorm.DB
}

// NewDBStatsProvider creates a provider over the shared database.
func NewDBStatsProvider(db *gorm.DB) *DBStatsProvider {
	return &DBStatsProvider{db: db}
}

// Snapshot counts each dimension. days_active comes from this engine's own
// daily engagement rows; everything else from collaborator tables.
func (p *DBStatsProvider) Snapshot(ctx context.Context, userID uint) (StatsSnapshot, error) {
	var snap StatsSnapshot
	db := p.db.WithContext(ctx)

	counts := []struct {
		dest  *int
		query *gorm.DB
	}{
		{&snap.Posts, db.Table("posts").Where("user_id = ?", userID)},
		{&snap.Comments, db.Table("comments").Where("user_id = ?", userID)},
		{&snap.Friends, db.Table("friendships").Where("user_id = ? AND status = ?", userID, "accepted")},
		{&snap.Projects, db.Table("project_members").Where("user_id = ?", userID)},
	}
	for _, c := range counts {
		var n int64
		if err := c.query.Count(&n).Error; err != nil {
			return StatsSnapshot{}, fmt.Errorf("%w: stats read: %v", ErrUnavailable, err)
		}
		*c.dest = int(n)
	}

	// Profile hearts received, summed from the hearts ledger.
	var hearts int64
	if err := db.Table("profile_hearts").Where("receiver_id = ?", userID).
		Select("COALESCE(SUM(amount),0)").Scan(&hearts).Error; err != nil {
		return StatsSnapshot{}, fmt.Errorf("%w: stats read: %v", ErrUnavailable, err)
	}
	snap.Hearts = int(hearts)

	var daysActive int64
	if err := db.Model(&models.DailyEngagement{}).Where("user_id = ?", userID).
		Count(&daysActive).Error; err != nil {
		return StatsSnapshot{}, fmt.Errorf("%w: stats read: %v", ErrUnavailable, err)
	}
	snap.DaysActive = int(daysActive)

	return snap, nil
}
