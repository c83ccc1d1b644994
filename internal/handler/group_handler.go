package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neighborly/internal/model"
	"neighborly/internal/repository"
)

type GroupHandler struct {
	groups *repository.GroupRepository
	logger *zap.Logger
}

func NewGroupHandler(groups *repository.GroupRepository, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		logger: logger,
	}
}

// CreateGroup handles POST /groups. The creator joins automatically.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := c.GetInt("user_id")
	group := &model.Group{Name: req.Name}
	if err := h.groups.CreateGroup(c.Request.Context(), group); err != nil {
		h.logger.Error("Failed to create group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}
	if err := h.groups.AddMember(c.Request.Context(), group.ID, userID); err != nil {
		h.logger.Error("Failed to add creator to group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_id": group.ID, "name": group.Name})
}

// ListGroups handles GET /groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// JoinGroup handles POST /groups/:id/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("user_id")
	if err := h.groups.AddMember(c.Request.Context(), groupID, userID); err != nil {
		h.logger.Error("Failed to join group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "joined", "group_id": groupID})
}
