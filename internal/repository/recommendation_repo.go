package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	mqcontracts "neighborly/contracts/mq"
	"neighborly/internal/model"
	"neighborly/pkg/outbox"
	"neighborly/pkg/trace"
)

type RecommendationRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
}

func NewRecommendationRepository(db *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{
		db:         db,
		outboxRepo: outbox.NewRepository(db),
	}
}

// CreateWithEvent inserts the recommendation row and a
// recommendation.created outbox event in one transaction.
func (r *RecommendationRepository) CreateWithEvent(ctx context.Context, rec *model.Recommendation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO recommendations (request_id, group_id, user_id, provider_name, testimonial, service_type, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		rec.RequestID,
		rec.GroupID,
		rec.UserID,
		rec.ProviderName,
		rec.Testimonial,
		rec.ServiceType,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return err
	}

	payload := mqcontracts.RecommendationCreatedPayload{
		RecommendationID: rec.ID,
		RequestID:        rec.RequestID,
		GroupID:          rec.GroupID,
		UserID:           rec.UserID,
		ServiceType:      rec.ServiceType,
		ProviderName:     rec.ProviderName,
		TraceID:          trace.FromContext(ctx),
		CreatedAt:        rec.CreatedAt,
	}
	recID64 := int64(rec.ID)
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "recommendation", &recID64, "recommendation.created", payload); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindByID returns a recommendation by id.
func (r *RecommendationRepository) FindByID(ctx context.Context, id int) (*model.Recommendation, error) {
	query := `
        SELECT id, request_id, group_id, user_id, provider_name, testimonial, service_type, created_at
        FROM recommendations
        WHERE id = $1
    `
	var rec model.Recommendation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.RequestID,
		&rec.GroupID,
		&rec.UserID,
		&rec.ProviderName,
		&rec.Testimonial,
		&rec.ServiceType,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByRequest returns all recommendations replying to a request.
func (r *RecommendationRepository) ListByRequest(ctx context.Context, requestID int) ([]model.RecommendationWithCounts, error) {
	query := `
        SELECT r.id, r.request_id, r.group_id, r.user_id, r.provider_name, r.testimonial, r.service_type, r.created_at,
               COUNT(DISTINCT t.user_id) AS thanks_count,
               COUNT(DISTINCT s.user_id) AS saves_count
        FROM recommendations r
        LEFT JOIN recommendation_thanks t ON r.id = t.recommendation_id
        LEFT JOIN recommendation_saves s ON r.id = s.recommendation_id
        WHERE r.request_id = $1
        GROUP BY r.id
        ORDER BY r.created_at ASC
    `
	return r.queryWithCounts(ctx, query, requestID)
}

// ListFeed returns recommendations made by users the viewer follows,
// newest first.
func (r *RecommendationRepository) ListFeed(ctx context.Context, viewerID, limit int) ([]model.RecommendationWithCounts, error) {
	query := `
        SELECT r.id, r.request_id, r.group_id, r.user_id, r.provider_name, r.testimonial, r.service_type, r.created_at,
               COUNT(DISTINCT t.user_id) AS thanks_count,
               COUNT(DISTINCT s.user_id) AS saves_count
        FROM recommendations r
        JOIN follows f ON r.user_id = f.followee_id AND f.follower_id = $1
        LEFT JOIN recommendation_thanks t ON r.id = t.recommendation_id
        LEFT JOIN recommendation_saves s ON r.id = s.recommendation_id
        GROUP BY r.id
        ORDER BY r.created_at DESC
        LIMIT $2
    `
	return r.queryWithCounts(ctx, query, viewerID, limit)
}

// Thank records a thank-you from a user. Thanking twice is a no-op.
func (r *RecommendationRepository) Thank(ctx context.Context, recommendationID, userID int) error {
	query := `
        INSERT INTO recommendation_thanks (recommendation_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, recommendationID, userID)
	return err
}

// Save bookmarks a recommendation for a user. Saving twice is a no-op.
func (r *RecommendationRepository) Save(ctx context.Context, recommendationID, userID int) error {
	query := `
        INSERT INTO recommendation_saves (recommendation_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, recommendationID, userID)
	return err
}

func (r *RecommendationRepository) queryWithCounts(ctx context.Context, query string, args ...any) ([]model.RecommendationWithCounts, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []model.RecommendationWithCounts{}
	for rows.Next() {
		var rec model.RecommendationWithCounts
		err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.GroupID,
			&rec.UserID,
			&rec.ProviderName,
			&rec.Testimonial,
			&rec.ServiceType,
			&rec.CreatedAt,
			&rec.ThanksCount,
			&rec.SavesCount,
		)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
