package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowRepository struct {
	db *pgxpool.Pool
}

func NewFollowRepository(db *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow records follower → followee. Following twice is a no-op.
func (r *FollowRepository) Follow(ctx context.Context, followerID, followeeID int) error {
	query := `
        INSERT INTO follows (follower_id, followee_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, followerID, followeeID)
	return err
}

// Unfollow removes the edge; missing edges are a no-op.
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followeeID int) error {
	query := `
        DELETE FROM follows
        WHERE follower_id = $1 AND followee_id = $2
    `
	_, err := r.db.Exec(ctx, query, followerID, followeeID)
	return err
}

// ListFollowerIDs returns the ids of everyone following the given user.
func (r *FollowRepository) ListFollowerIDs(ctx context.Context, followeeID int) ([]int, error) {
	query := `
        SELECT follower_id
        FROM follows
        WHERE followee_id = $1
        ORDER BY follower_id ASC
    `
	rows, err := r.db.Query(ctx, query, followeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
