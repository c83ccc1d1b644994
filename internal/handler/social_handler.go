package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neighborly/internal/repository"
	"neighborly/internal/service"
)

// SocialHandler covers follows, the follow feed and notifications.
type SocialHandler struct {
	follows       *repository.FollowRepository
	notifications *repository.NotificationRepository
	recService    *service.RecommendationService
	logger        *zap.Logger
}

func NewSocialHandler(
	follows *repository.FollowRepository,
	notifications *repository.NotificationRepository,
	recService *service.RecommendationService,
	logger *zap.Logger,
) *SocialHandler {
	return &SocialHandler{
		follows:       follows,
		notifications: notifications,
		recService:    recService,
		logger:        logger,
	}
}

// Follow handles POST /users/:id/follow
func (h *SocialHandler) Follow(c *gin.Context) {
	followeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("user_id")
	if followeeID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	if err := h.follows.Follow(c.Request.Context(), userID, followeeID); err != nil {
		h.logger.Error("Failed to follow", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to follow"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "following"})
}

// Unfollow handles DELETE /users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	followeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("user_id")
	if err := h.follows.Unfollow(c.Request.Context(), userID, followeeID); err != nil {
		h.logger.Error("Failed to unfollow", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unfollow"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}

// Feed handles GET /me/feed?limit=50
func (h *SocialHandler) Feed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	userID := c.GetInt("user_id")
	recs, err := h.recService.Feed(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to load feed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feed": recs})
}

// ListNotifications handles GET /me/notifications
func (h *SocialHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt("user_id")
	notifications, err := h.notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationRead handles POST /notifications/:id/read
func (h *SocialHandler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	userID := c.GetInt("user_id")
	if err := h.notifications.MarkRead(c.Request.Context(), id, userID); err != nil {
		h.logger.Error("Failed to mark notification read", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
