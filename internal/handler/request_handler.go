package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neighborly/internal/service"
)

type RequestHandler struct {
	requestService *service.RequestService
	logger         *zap.Logger
}

func NewRequestHandler(requestService *service.RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		logger:         logger,
	}
}

// CreateRequest handles POST /requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req struct {
		GroupID     int    `json:"group_id" binding:"required"`
		Body        string `json:"body" binding:"required"`
		ServiceType string `json:"service_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := c.GetInt("user_id")
	created, err := h.requestService.Create(c.Request.Context(), userID, req.GroupID, req.Body, req.ServiceType)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
			return
		}
		h.logger.Error("Failed to create request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":   created.ID,
		"service_type": created.ServiceType,
	})
}

// GetRequest handles GET /requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	userID := c.GetInt("user_id")
	req, err := h.requestService.Get(c.Request.Context(), userID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrNotGroupMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		default:
			h.logger.Error("Failed to get request", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ListGroupRequests handles GET /groups/:id/requests
func (h *RequestHandler) ListGroupRequests(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("user_id")
	requests, err := h.requestService.ListByGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
			return
		}
		h.logger.Error("Failed to list requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
