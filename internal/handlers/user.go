package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warbler-app/warbler/internal/middleware"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/policy"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/internal/session"
	"github.com/warbler-app/warbler/pkg/logger"
)

type UserHandler struct {
	authService     *services.AuthService
	graphService    *services.GraphService
	feedService     *services.FeedService
	activityService *services.ActivityService
	sessions        *session.Manager
	logger          *logger.Logger
}

func NewUserHandler(
	authService *services.AuthService,
	graphService *services.GraphService,
	feedService *services.FeedService,
	activityService *services.ActivityService,
	sessions *session.Manager,
	logger *logger.Logger,
) *UserHandler {
	return &UserHandler{
		authService:     authService,
		graphService:    graphService,
		feedService:     feedService,
		activityService: activityService,
		sessions:        sessions,
		logger:          logger,
	}
}

type UpdateProfileRequest struct {
	services.ProfileInput
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetProfile)
	users.GET("/:id/likes", h.GetLikes)
	users.GET("/:id/activity", h.GetActivity)

	signedIn := users.Group("", middleware.RequireUser())
	signedIn.PUT("/:id", h.UpdateProfile)
	signedIn.DELETE("/:id", h.DeleteAccount)
	signedIn.GET("/:id/following", h.GetFollowing)
	signedIn.GET("/:id/followers", h.GetFollowers)
	signedIn.POST("/:id/follow", h.Follow)
	signedIn.DELETE("/:id/follow", h.Unfollow)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	query := c.Query("q")

	users, err := h.authService.ListUsers(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"query": query,
	})
}

// GetProfile renders the profile view. Signed-in viewers also get whether
// they follow the user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.feedService.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := gin.H{"profile": view}
	if viewer := middleware.GetCurrentUser(c); viewer != nil && viewer.ID != userID {
		following, err := h.graphService.IsFollowing(c.Request.Context(), viewer.ID, userID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		resp["is_following"] = following
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.authService.EditProfile(c.Request.Context(), middleware.GetCurrentUser(c), userID, req.ProfileInput, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// DeleteAccount removes the account and ends the current session.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), middleware.GetCurrentUser(c), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("Failed to end session of deleted user")
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	h.connections(c, "following", h.graphService.FollowingOf)
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	h.connections(c, "followers", h.graphService.FollowersOf)
}

func (h *UserHandler) Follow(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.graphService.Follow(c.Request.Context(), middleware.GetCurrentUser(c), targetID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Followed successfully"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.graphService.Unfollow(c.Request.Context(), middleware.GetCurrentUser(c), targetID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

func (h *UserHandler) GetLikes(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	messages, err := h.feedService.LikedFeed(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *UserHandler) GetActivity(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	activities, err := h.activityService.Recent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *UserHandler) connections(c *gin.Context, key string, list func(context.Context, uint) ([]*models.User, error)) {
	if !policy.CanViewConnections(middleware.GetCurrentUser(c)) {
		respondError(c, h.logger, models.NewUnauthorizedError("Access unauthorized"))
		return
	}

	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	users, err := list(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: users})
}
