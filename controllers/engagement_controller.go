package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumosocial/pulse/config"
	"github.com/lumosocial/pulse/engine"
	"github.com/lumosocial/pulse/middleware"
	"github.com/lumosocial/pulse/models"
	"github.com/lumosocial/pulse/utils"
)

// EngagementController exposes the engagement engine over HTTP.
type EngagementController struct {
	db     *gorm.DB
	engine *engine.Engine
}

// NewEngagementController creates a new controller instance.
func NewEngagementController(db *gorm.DB, eng *engine.Engine) *EngagementController {
	return &EngagementController{db: db, engine: eng}
}

const badgeCachePrefix = "pulse:badges:"

// RecordEvent ingests one activity event for the authenticated user and
// runs the full pipeline: streak, score, tier rewards, achievements.
func (e *EngagementController) RecordEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ActionKind string            `json:"action_kind" binding:"required"`
		OccurredOn string            `json:"occurred_on"` // YYYY-MM-DD, defaults to today
		Multiplier *int              `json:"multiplier"`
		Metadata   map[string]string `json:"metadata"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var occurredOn time.Time
	if req.OccurredOn != "" {
		parsed, err := time.Parse("2006-01-02", req.OccurredOn)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40041, "occurred_on must be YYYY-MM-DD")
			return
		}
		occurredOn = parsed
	}

	multiplier := 1
	if req.Multiplier != nil {
		multiplier = *req.Multiplier
	}

	// Metadata is open-ended client text; strip any markup before it can
	// reach logs or the ledger.
	metadata := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		metadata[utils.Sanitize(k)] = utils.Sanitize(v)
	}

	result, err := e.engine.Process(ctx.Request.Context(), engine.Event{
		UserID:     userID,
		Kind:       models.ActionKind(req.ActionKind),
		OccurredOn: occurredOn,
		Multiplier: multiplier,
		Metadata:   metadata,
	})
	if err != nil {
		engineError(ctx, err)
		return
	}

	if len(result.Achievements) > 0 {
		// Unlocks change badge completion; drop the cached projection.
		utils.InvalidateByPrefix(fmt.Sprintf("%s%d", badgeCachePrefix, userID))
	}

	utils.Success(ctx, result)
}

// Today returns the authenticated user's daily engagement projection.
func (e *EngagementController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	daily, err := e.engine.Today(ctx.Request.Context(), userID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	resp := gin.H{
		"date":          daily.Date,
		"score":         daily.Score,
		"actions":       daily.ActionCounts(),
		"claimed_tiers": daily.ClaimedTierNames(),
	}
	if next, ok := engine.NextTier(daily.Score); ok {
		resp["next_tier"] = next.Name
		resp["next_tier_remaining"] = next.Threshold - daily.Score
	}
	utils.Success(ctx, resp)
}

// Streaks returns all streak counters for the authenticated user.
func (e *EngagementController) Streaks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streaks, err := e.engine.Streaks(ctx.Request.Context(), userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"streaks": streaks})
}

// Rewards returns the user's newest reward ledger entries.
func (e *EngagementController) Rewards(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	maxLimit := config.Get().RewardsPageLimit
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rewards, err := e.engine.RecentRewards(ctx.Request.Context(), userID, limit)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"rewards": rewards})
}

// Achievements returns the user's earned achievements.
func (e *EngagementController) Achievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	earned, err := e.engine.Achievements(ctx.Request.Context(), userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"achievements": earned})
}

// Badges returns badge completion percentages for the whole catalog.
// The projection is read-only and briefly cached in Redis.
func (e *EngagementController) Badges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("%s%d", badgeCachePrefix, userID)
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	progress, err := e.engine.BadgeProgress(ctx.Request.Context(), userID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	resp := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"badges": progress}}
	ttl := time.Duration(config.Get().BadgeCacheTTLSec) * time.Second
	utils.CacheSetJSON(cacheKey, resp, ttl)
	ctx.JSON(http.StatusOK, resp)
}

// engineError maps engine sentinel errors to HTTP status and business codes.
func engineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		utils.Error(ctx, http.StatusBadRequest, 40042, err.Error())
	case errors.Is(err, engine.ErrUnauthorized):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	case errors.Is(err, engine.ErrUnavailable):
		utils.Error(ctx, http.StatusServiceUnavailable, 50340, "engagement temporarily unavailable")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50040, "internal error")
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
