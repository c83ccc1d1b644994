package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	mqcontracts "neighborly/contracts/mq"
	"neighborly/internal/model"
	"neighborly/pkg/outbox"
	"neighborly/pkg/trace"
)

type RequestRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
}

func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{
		db:         db,
		outboxRepo: outbox.NewRepository(db),
	}
}

// CreateWithEvent inserts the request row and a request.created outbox event
// in one transaction, so the event cannot outlive a rolled-back row or a row
// silently miss its event.
func (r *RequestRepository) CreateWithEvent(ctx context.Context, req *model.Request, source string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO requests (group_id, user_id, submitter_name, submitter_email, body, service_type, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		req.GroupID,
		req.UserID,
		req.SubmitterName,
		req.SubmitterEmail,
		req.Body,
		req.ServiceType,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return err
	}

	payload := mqcontracts.RequestCreatedPayload{
		RequestID:   req.ID,
		GroupID:     req.GroupID,
		UserID:      req.UserID,
		ServiceType: req.ServiceType,
		Body:        req.Body,
		Source:      source,
		TraceID:     trace.FromContext(ctx),
		CreatedAt:   req.CreatedAt,
	}
	reqID64 := int64(req.ID)
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "request", &reqID64, "request.created", payload); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindByID returns a request by id.
func (r *RequestRepository) FindByID(ctx context.Context, id int) (*model.Request, error) {
	query := `
        SELECT id, group_id, user_id, submitter_name, submitter_email, body, service_type, created_at
        FROM requests
        WHERE id = $1
    `
	var req model.Request
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.GroupID,
		&req.UserID,
		&req.SubmitterName,
		&req.SubmitterEmail,
		&req.Body,
		&req.ServiceType,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByGroup returns the requests for a group, newest first.
func (r *RequestRepository) ListByGroup(ctx context.Context, groupID int) ([]model.Request, error) {
	query := `
        SELECT id, group_id, user_id, submitter_name, submitter_email, body, service_type, created_at
        FROM requests
        WHERE group_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []model.Request{}
	for rows.Next() {
		var req model.Request
		err := rows.Scan(
			&req.ID,
			&req.GroupID,
			&req.UserID,
			&req.SubmitterName,
			&req.SubmitterEmail,
			&req.Body,
			&req.ServiceType,
			&req.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
