package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "neighborly/contracts/mq"
	"neighborly/internal/model"
	"neighborly/internal/repository"
	"neighborly/pkg/metrics"
	"neighborly/pkg/outbox"
)

// NotificationSender persists a notification and delivers it on the
// requested channel. Delivery outcome is recorded as an outbox event so
// failures can be replayed.
type NotificationSender struct {
	db         *pgxpool.Pool
	repo       *repository.NotificationRepository
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewNotificationSender(db *pgxpool.Pool, repo *repository.NotificationRepository, logger *zap.Logger) *NotificationSender {
	return &NotificationSender{
		db:         db,
		repo:       repo,
		outboxRepo: outbox.NewRepository(db),
		logger:     logger,
	}
}

// Notify stores the notification and attempts delivery.
func (s *NotificationSender) Notify(ctx context.Context, userID int, notificationType, content, channel string) error {
	n := &model.Notification{
		UserID:  userID,
		Type:    notificationType,
		Content: content,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}

	var err error
	switch channel {
	case "EMAIL":
		err = s.sendEmail(ctx, userID, content)
	case "IN_APP":
		// 站内通知：入库即送达
	default:
		err = fmt.Errorf("unsupported channel: %s", channel)
	}

	// 使用事务写入 Outbox 事件
	tx, txErr := s.db.Begin(ctx)
	if txErr != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(txErr))
		return txErr
	}
	defer tx.Rollback(ctx)

	notiID64 := int64(n.ID)
	if err != nil {
		metrics.IncrementNotification(channel, "failed")
		s.logger.Error("Failed to deliver notification",
			zap.Int("notification_id", n.ID),
			zap.String("channel", channel),
			zap.Error(err),
		)

		payload := mqcontracts.NotificationFailedPayload{
			NotificationID: n.ID,
			UserID:         userID,
			Channel:        channel,
			Error:          err.Error(),
			RetryCount:     0,
		}
		if pubErr := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "notification", &notiID64, "notification.failed", payload); pubErr != nil {
			s.logger.Error("Failed to insert notification.failed to outbox", zap.Error(pubErr))
			return pubErr
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return commitErr
		}
		return err
	}

	payload := mqcontracts.NotificationSentPayload{
		NotificationID: n.ID,
		UserID:         userID,
		Channel:        channel,
		SentAt:         time.Now(),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "notification", &notiID64, "notification.sent", payload); err != nil {
		s.logger.Error("Failed to insert notification.sent to outbox", zap.Error(err))
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.IncrementNotification(channel, "sent")
	return nil
}

func (s *NotificationSender) sendEmail(ctx context.Context, userID int, message string) error {
	// TODO: wire an SMTP provider; the notification row is the source of
	// truth either way
	s.logger.Info("Sending email notification",
		zap.Int("user_id", userID),
		zap.String("message", message),
	)
	time.Sleep(100 * time.Millisecond)
	return nil
}
