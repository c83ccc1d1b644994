package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessedMessageRepository is the durable half of the inbound-message
// ledger. A message id lands here only after its fan-out completed, so
// re-polling the same inbox window never re-creates requests.
type ProcessedMessageRepository struct {
	db *pgxpool.Pool
}

func NewProcessedMessageRepository(db *pgxpool.Pool) *ProcessedMessageRepository {
	return &ProcessedMessageRepository{db: db}
}

// Exists reports whether the message id has already been processed.
func (r *ProcessedMessageRepository) Exists(ctx context.Context, messageID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM processed_messages WHERE message_id = $1
        )
    `
	var ok bool
	err := r.db.QueryRow(ctx, query, messageID).Scan(&ok)
	return ok, err
}

// Mark records the message id as processed. Marking twice is a no-op.
func (r *ProcessedMessageRepository) Mark(ctx context.Context, messageID string) error {
	query := `
        INSERT INTO processed_messages (message_id, processed_at)
        VALUES ($1, NOW())
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, messageID)
	return err
}
