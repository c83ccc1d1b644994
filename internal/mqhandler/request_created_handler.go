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

const maxRetries = 5

// RequestCreatedHandler fans a new request out as notifications to the
// other members of its group.
type RequestCreatedHandler struct {
	groups *repository.GroupRepository
	users  *repository.UserRepository
	sender *service.NotificationSender

	deduper      *util.Deduper
	retryCounter *util.RetryCounter
	logger       *zap.Logger
}

func NewRequestCreatedHandler(
	groups *repository.GroupRepository,
	users *repository.UserRepository,
	sender *service.NotificationSender,
	deduper *util.Deduper,
	retryCounter *util.RetryCounter,
	logger *zap.Logger,
) *RequestCreatedHandler {
	return &RequestCreatedHandler{
		groups:       groups,
		users:        users,
		sender:       sender,
		deduper:      deduper,
		retryCounter: retryCounter,
		logger:       logger,
	}
}

func (h *RequestCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer h.recoverPanic()

	var payload mqcontracts.RequestCreatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid RequestCreatedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", mq.ErrBadPayload, err)
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	traceLogger := logger.WithTrace(ctx, h.logger)
	traceLogger.Info("Handling request.created event",
		zap.Int("request_id", payload.RequestID),
		zap.Int("group_id", payload.GroupID),
	)

	// Redis 去重（避免并发重复消费）
	key := strconv.Itoa(payload.RequestID)
	if !h.deduper.AcquireOnce(ctx, "request_created", key) {
		return nil
	}

	retryKey := util.FormatRetryKey("request_created", key)
	retryCount, _ := h.retryCounter.IncrementAndGet(ctx, retryKey)

	memberIDs, err := h.groups.ListMemberIDs(ctx, payload.GroupID)
	if err != nil {
		return h.handleError(ctx, err, retryKey, retryCount, payload.RequestID)
	}

	submitter, err := h.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return h.handleError(ctx, err, retryKey, retryCount, payload.RequestID)
	}

	content := fmt.Sprintf("%s is looking for a %s recommendation", submitter.FullName(), payload.ServiceType)
	notified := 0
	for _, memberID := range memberIDs {
		if memberID == payload.UserID {
			continue
		}
		if err := h.sender.Notify(ctx, memberID, "request.created", content, "EMAIL"); err != nil {
			// 通知已入库，发送失败不重放整个事件
			traceLogger.Warn("Failed to notify member",
				zap.Int("user_id", memberID),
				zap.Error(err),
			)
			continue
		}
		notified++
	}

	h.retryCounter.Reset(ctx, retryKey)
	traceLogger.Info("Request notifications fanned out",
		zap.Int("request_id", payload.RequestID),
		zap.Int("notified", notified),
	)
	return nil
}

func (h *RequestCreatedHandler) handleError(ctx context.Context, err error, retryKey string, retryCount int64, requestID int) error {
	isRetryable, errType := util.IsRetryableError(err)
	h.logger.Warn("request.created handler error",
		zap.String("type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Int("request_id", requestID),
		zap.Int64("retry", retryCount),
		zap.Error(err),
	)

	h.deduper.Release(ctx, "request_created", strconv.Itoa(requestID))

	if retryCount > maxRetries || !isRetryable {
		h.retryCounter.Reset(ctx, retryKey)
		return nil // ack → 吃掉
	}
	return err // nack → 重试
}

func (h *RequestCreatedHandler) recoverPanic() {
	if r := recover(); r != nil {
		h.logger.Error("panic recovered in handler", zap.Any("panic", r))
	}
}
