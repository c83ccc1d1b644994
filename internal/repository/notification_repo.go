package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"neighborly/internal/model"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert stores a notification for a user.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (user_id, type, content, is_read, created_at)
        VALUES ($1, $2, $3, FALSE, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, n.UserID, n.Type, n.Content).Scan(&n.ID)
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int) ([]model.Notification, error) {
	query := `
        SELECT id, user_id, type, content, is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read; scoped to the owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	query := `
        UPDATE notifications
        SET is_read = TRUE
        WHERE id = $1 AND user_id = $2
    `
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}
