package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"neighborly/internal/model"
)

type GroupRepository struct {
	db *pgxpool.Pool
}

func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup inserts a new group.
func (r *GroupRepository) CreateGroup(ctx context.Context, g *model.Group) error {
	query := `
        INSERT INTO groups (name, created_at)
        VALUES ($1, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, g.Name).Scan(&g.ID)
}

// ListGroups returns all groups.
func (r *GroupRepository) ListGroups(ctx context.Context) ([]model.Group, error) {
	query := `
        SELECT id, name, created_at
        FROM groups
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AddMember adds a user to a group. Re-joining is a no-op.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int) error {
	query := `
        INSERT INTO group_members (group_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, groupID, userID)
	return err
}

// ListGroupIDsByUser returns the ids of every group the user belongs to.
// The primary key on (group_id, user_id) keeps the set deduplicated.
func (r *GroupRepository) ListGroupIDsByUser(ctx context.Context, userID int) ([]int, error) {
	query := `
        SELECT group_id
        FROM group_members
        WHERE user_id = $1
        ORDER BY group_id ASC
    `
	rows, err := r.db.Query(ctx, query, userID)
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

// ListMemberIDs returns all user ids in a group.
func (r *GroupRepository) ListMemberIDs(ctx context.Context, groupID int) ([]int, error) {
	query := `
        SELECT user_id
        FROM group_members
        WHERE group_id = $1
        ORDER BY user_id ASC
    `
	rows, err := r.db.Query(ctx, query, groupID)
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

// IsMember reports whether a user belongs to a group.
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
        )
    `
	var ok bool
	err := r.db.QueryRow(ctx, query, groupID, userID).Scan(&ok)
	return ok, err
}
