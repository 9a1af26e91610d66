package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warbler-app/warbler/internal/middleware"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/pkg/logger"
)

type FeedHandler struct {
	feedService       *services.FeedService
	engagementService *services.EngagementService
	logger            *logger.Logger
}

func NewFeedHandler(feedService *services.FeedService, engagementService *services.EngagementService, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedService:       feedService,
		engagementService: engagementService,
		logger:            logger,
	}
}

type CreateMessageRequest struct {
	Text string `json:"text"`
}

func (h *FeedHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/feed", h.GetFeed)

	messages := rg.Group("/messages")
	messages.GET("/:id", h.GetMessage)

	signedIn := messages.Group("", middleware.RequireUser())
	signedIn.POST("", h.CreateMessage)
	signedIn.DELETE("/:id", h.DeleteMessage)
	signedIn.POST("/:id/like", h.LikeMessage)
	signedIn.DELETE("/:id/like", h.UnlikeMessage)
}

// GetFeed returns the home timeline and the ids of messages the viewer has
// liked. Anonymous callers get {"anonymous": true}.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	viewer := middleware.GetCurrentUser(c)
	if viewer == nil {
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
		return
	}

	messages, err := h.feedService.HomeFeed(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	liked, err := h.engagementService.LikedMessageIDs(c.Request.Context(), viewer.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":          messages,
		"liked_message_ids": liked,
	})
}

func (h *FeedHandler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	message, err := h.engagementService.PostMessage(c.Request.Context(), middleware.GetCurrentUser(c), req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *FeedHandler) GetMessage(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	message, err := h.engagementService.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	liked, err := h.engagementService.IsLiked(c.Request.Context(), middleware.GetCurrentUser(c), messageID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "liked": liked})
}

func (h *FeedHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.engagementService.DeleteMessage(c.Request.Context(), middleware.GetCurrentUser(c), messageID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FeedHandler) LikeMessage(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.engagementService.Like(c.Request.Context(), middleware.GetCurrentUser(c), messageID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": true})
}

func (h *FeedHandler) UnlikeMessage(c *gin.Context) {
	messageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.engagementService.Unlike(c.Request.Context(), middleware.GetCurrentUser(c), messageID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": false})
}
