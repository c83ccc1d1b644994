package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	mqcontracts "neighborly/contracts/mq"
	"neighborly/internal/repository"
	"neighborly/internal/service"
	"neighborly/pkg/logger"
	"neighborly/pkg/mq"
	"neighborly/pkg/trace"
	"neighborly/pkg/util"
)

// RecommendationCreatedHandler notifies the request owner and the
// recommender's followers about a new recommendation.
type RecommendationCreatedHandler struct {
	requests *repository.RequestRepository
	follows  *repository.FollowRepository
	users    *repository.UserRepository
	sender   *service.NotificationSender

	deduper      *util.Deduper
	retryCounter *util.RetryCounter
	logger       *zap.Logger
}

func NewRecommendationCreatedHandler(
	requests *repository.RequestRepository,
	follows *repository.FollowRepository,
	users *repository.UserRepository,
	sender *service.NotificationSender,
	deduper *util.Deduper,
	retryCounter *util.RetryCounter,
	logger *zap.Logger,
) *RecommendationCreatedHandler {
	return &RecommendationCreatedHandler{
		requests:     requests,
		follows:      follows,
		users:        users,
		sender:       sender,
		deduper:      deduper,
		retryCounter: retryCounter,
		logger:       logger,
	}
}

func (h *RecommendationCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer h.recoverPanic()

	var payload mqcontracts.RecommendationCreatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid RecommendationCreatedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", mq.ErrBadPayload, err)
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	traceLogger := logger.WithTrace(ctx, h.logger)
	traceLogger.Info("Handling recommendation.created event",
		zap.Int("recommendation_id", payload.RecommendationID),
	)

	key := strconv.Itoa(payload.RecommendationID)
	if !h.deduper.AcquireOnce(ctx, "recommendation_created", key) {
		return nil
	}

	retryKey := util.FormatRetryKey("recommendation_created", key)
	retryCount, _ := h.retryCounter.IncrementAndGet(ctx, retryKey)

	recommender, err := h.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return h.handleError(ctx, err, retryKey, retryCount, payload.RecommendationID)
	}

	// 先通知请求发起人
	recipients := map[int]bool{}
	if payload.RequestID != nil {
		req, err := h.requests.FindByID(ctx, *payload.RequestID)
		if err != nil {
			return h.handleError(ctx, err, retryKey, retryCount, payload.RecommendationID)
		}
		if req.UserID != payload.UserID {
			recipients[req.UserID] = true
		}
	}

	followerIDs, err := h.follows.ListFollowerIDs(ctx, payload.UserID)
	if err != nil {
		return h.handleError(ctx, err, retryKey, retryCount, payload.RecommendationID)
	}
	for _, id := range followerIDs {
		if id != payload.UserID {
			recipients[id] = true
		}
	}

	content := fmt.Sprintf("%s recommended %s for %s", recommender.FullName(), payload.ProviderName, payload.ServiceType)
	notified := 0
	for recipientID := range recipients {
		if err := h.sender.Notify(ctx, recipientID, "recommendation.created", content, "EMAIL"); err != nil {
			traceLogger.Warn("Failed to notify user",
				zap.Int("user_id", recipientID),
				zap.Error(err),
			)
			continue
		}
		notified++
	}

	h.retryCounter.Reset(ctx, retryKey)
	traceLogger.Info("Recommendation notifications fanned out",
		zap.Int("recommendation_id", payload.RecommendationID),
		zap.Int("notified", notified),
	)
	return nil
}

func (h *RecommendationCreatedHandler) handleError(ctx context.Context, err error, retryKey string, retryCount int64, recommendationID int) error {
	isRetryable, errType := util.IsRetryableError(err)
	h.logger.Warn("recommendation.created handler error",
		zap.String("type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Int("recommendation_id", recommendationID),
		zap.Int64("retry", retryCount),
		zap.Error(err),
	)

	h.deduper.Release(ctx, "recommendation_created", strconv.Itoa(recommendationID))

	if retryCount > maxRetries || !isRetryable {
		h.retryCounter.Reset(ctx, retryKey)
		return nil
	}
	return err
}

func (h *RecommendationCreatedHandler) recoverPanic() {
	if r := recover(); r != nil {
		h.logger.Error("panic recovered in handler", zap.Any("panic", r))
	}
}
