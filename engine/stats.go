package engine

import "context"

// Stat is a closed identifier for one lifetime statistic dimension.
// Requirement tables key off Stat constants instead of free strings so a
// typo in a definition fails catalog validation instead of silently
// evaluating to zero.
type Stat string

const (
	StatPosts      Stat = "posts"
	StatFriends    Stat = "friends"
	StatHearts     Stat = "hearts"
	StatComments   Stat = "comments"
	StatProjects   Stat = "projects"
	StatDaysActive Stat = "days_active"
)

// StatsSnapshot is a read-only view of a user's aggregate lifetime
// statistics, supplied by the social graph and content subsystems. The
// engine never mutates it.
type StatsSnapshot struct {
	Posts      int `json:"posts"`
	Friends    int `json:"friends"`
	Hearts     int `json:"hearts"`
	Comments   int `json:"comments"`
	Projects   int `json:"projects"`
	DaysActive int `json:"days_active"`
}

// Value returns the snapshot field for a stat. ok is false for stats
// outside the closed set.
func (s StatsSnapshot) Value(stat Stat) (int, bool) {
	switch stat {
	case StatPosts:
		return s.Posts, true
	case StatFriends:
		return s.Friends, true
	case StatHearts:
		return s.Hearts, true
	case StatComments:
		return s.Comments, true
	case StatProjects:
		return s.Projects, true
	case StatDaysActive:
		return s.DaysActive, true
	default:
		return 0, false
	}
}

// StatsProvider supplies lifetime stats snapshots. The production
// implementation aggregates from collaborator-owned tables; tests inject a
// fixed snapshot.
type StatsProvider interface {
	Snapshot(ctx context.Context, userID uint) (StatsSnapshot, error)
}
