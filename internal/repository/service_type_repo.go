package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceTypeRepository struct {
	db *pgxpool.Pool
}

func NewServiceTypeRepository(db *pgxpool.Pool) *ServiceTypeRepository {
	return &ServiceTypeRepository{db: db}
}

// ListAll returns the full classification vocabulary as lowercase labels,
// longest label first with an alphabetical tie-break. The classifier is
// first-match-wins, so the ordering here is what makes "cleaning" beat
// "clean" when both are present in the text.
func (r *ServiceTypeRepository) ListAll(ctx context.Context) ([]string, error) {
	query := `
        SELECT label
        FROM service_types
        ORDER BY LENGTH(label) DESC, label ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// EnsureExists is the single path through which categories come into being:
// the label is normalized (trimmed, lowercased) and upserted. Callers that
// accept free-text categories from the UI all go through here.
func (r *ServiceTypeRepository) EnsureExists(ctx context.Context, label string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return "", fmt.Errorf("empty service type label")
	}

	query := `
        INSERT INTO service_types (label)
        VALUES ($1)
        ON CONFLICT (label) DO NOTHING
    `
	if _, err := r.db.Exec(ctx, query, normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
