package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neighborly/internal/service"
)

type RecommendationHandler struct {
	recService *service.RecommendationService
	logger     *zap.Logger
}

func NewRecommendationHandler(recService *service.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recService: recService,
		logger:     logger,
	}
}

// CreateRecommendation handles POST /recommendations
func (h *RecommendationHandler) CreateRecommendation(c *gin.Context) {
	var req struct {
		RequestID    *int   `json:"request_id"`
		GroupID      int    `json:"group_id"`
		ProviderName string `json:"provider_name" binding:"required"`
		Testimonial  string `json:"testimonial"`
		ServiceType  string `json:"service_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.RequestID == nil && req.GroupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request_id or group_id is required"})
		return
	}

	userID := c.GetInt("user_id")
	rec, err := h.recService.Create(c.Request.Context(), userID, req.RequestID, req.GroupID,
		req.ProviderName, req.Testimonial, req.ServiceType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrNotGroupMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		default:
			h.logger.Error("Failed to create recommendation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recommendation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendation_id": rec.ID,
		"service_type":      rec.ServiceType,
	})
}

// CreateForRequest handles POST /requests/:id/recommendations
func (h *RecommendationHandler) CreateForRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req struct {
		ProviderName string `json:"provider_name" binding:"required"`
		Testimonial  string `json:"testimonial"`
		ServiceType  string `json:"service_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := c.GetInt("user_id")
	rec, err := h.recService.Create(c.Request.Context(), userID, &requestID, 0,
		req.ProviderName, req.Testimonial, req.ServiceType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrNotGroupMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		default:
			h.logger.Error("Failed to create recommendation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recommendation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendation_id": rec.ID,
		"service_type":      rec.ServiceType,
	})
}

// ListRequestRecommendations handles GET /requests/:id/recommendations
func (h *RecommendationHandler) ListRequestRecommendations(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	recs, err := h.recService.ListByRequest(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Error("Failed to list recommendations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// Thank handles POST /recommendations/:id/thanks
func (h *RecommendationHandler) Thank(c *gin.Context) {
	h.mark(c, h.recService.Thank, "thanked")
}

// Save handles POST /recommendations/:id/saves
func (h *RecommendationHandler) Save(c *gin.Context) {
	h.mark(c, h.recService.Save, "saved")
}

func (h *RecommendationHandler) mark(c *gin.Context, op func(ctx context.Context, recID, userID int) error, status string) {
	recID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recommendation id"})
		return
	}

	userID := c.GetInt("user_id")
	if err := op(c.Request.Context(), recID, userID); err != nil {
		h.logger.Error("Failed to mark recommendation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
