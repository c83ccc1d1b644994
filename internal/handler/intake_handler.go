package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neighborly/internal/intake"
)

// IntakeHandler triggers a poll cycle over the inbound mailbox. The poller
// normally runs on a timer; this endpoint exists for manual runs.
type IntakeHandler struct {
	poller *intake.Poller
	logger *zap.Logger
}

func NewIntakeHandler(poller *intake.Poller, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		poller: poller,
		logger: logger,
	}
}

// Run handles POST /intake/run
func (h *IntakeHandler) Run(c *gin.Context) {
	if h.poller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mailbox not configured"})
		return
	}

	result, err := h.poller.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Intake run failed",
			zap.Int("created", result.Created),
			zap.Error(err),
		)
		// created 计数即使失败也要带回去
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Something went wrong.",
			"created": result.Created,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Created %d new request(s)", result.Created),
	})
}
