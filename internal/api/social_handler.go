package api

import (
	"net/http"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/service"

	"github.com/gin-gonic/gin"
)

// SocialHandler serves the feed, leaderboard, and public instance stats.
type SocialHandler struct {
	socialService service.SocialService
	storageDriver string
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(socialService service.SocialService, storageDriver string) *SocialHandler {
	return &SocialHandler{socialService: socialService, storageDriver: storageDriver}
}

// --- Response Structs ---

// FeedOwner is the minimal owner projection attached to each feed item.
type FeedOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type FeedItemResponse struct {
	Workout domain.Workout `json:"workout"`
	User    FeedOwner      `json:"user"`
}

type InstanceStatsResponse struct {
	TotalUsers       int64          `json:"totalUsers"`
	TotalWorkouts    int64          `json:"totalWorkouts"`
	TotalFriendships int64          `json:"totalFriendships"`
	Users            []UserResponse `json:"users"`
}

// --- Handler Methods ---

// Feed godoc
// @Summary Social feed of recent workouts
// @Description The 50 most recent entries across the caller and their
// @Description accepted friends. Pending connections are excluded.
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FeedItemResponse
// @Router /feed [get]
func (h *SocialHandler) Feed(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	items, err := h.socialService.Feed(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching feed")
		return
	}

	feed := make([]FeedItemResponse, 0, len(items))
	for _, item := range items {
		feed = append(feed, FeedItemResponse{
			Workout: item.Workout,
			User: FeedOwner{
				ID:       item.User.ID.Hex(),
				Username: item.User.Username,
			},
		})
	}
	c.JSON(http.StatusOK, feed)
}

// Leaderboard godoc
// @Summary Friend-circle leaderboard by workout count
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param period query string false "week (default), month, or all"
// @Success 200 {array} service.LeaderboardEntry
// @Router /leaderboard [get]
func (h *SocialHandler) Leaderboard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	period := c.DefaultQuery("period", service.PeriodWeek)
	entries, err := h.socialService.Leaderboard(c.Request.Context(), userID, period)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching leaderboard")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Overview godoc
// @Summary Public instance stats
// @Tags Social
// @Produce json
// @Success 200 {object} InstanceStatsResponse
// @Router /stats [get]
func (h *SocialHandler) Overview(c *gin.Context) {
	stats, err := h.socialService.Overview(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching stats")
		return
	}

	users := make([]UserResponse, 0, len(stats.Users))
	for i := range stats.Users {
		users = append(users, MapUserToResponse(&stats.Users[i]))
	}
	c.JSON(http.StatusOK, InstanceStatsResponse{
		TotalUsers:       stats.TotalUsers,
		TotalWorkouts:    stats.TotalWorkouts,
		TotalFriendships: stats.TotalFriendships,
		Users:            users,
	})
}

// Health godoc
// @Summary Health check
// @Tags Social
// @Produce json
// @Success 200 {object} gin.H
// @Router /health [get]
func (h *SocialHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "Server is running",
		"database": h.storageDriver,
	})
}
