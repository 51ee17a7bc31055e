package repository

import (
	"context"

	"github.com/vibetickets/helpdesk/internal/domain"
)

// CannedResponseRepository manages the staff reply template library.
type CannedResponseRepository interface {
	Create(ctx context.Context, response *domain.CannedResponse) error
	List(ctx context.Context) ([]domain.CannedResponse, error)
}

type cannedResponseRepository struct {
	db Querier
}

// NewCannedResponseRepository builds repository.
func NewCannedResponseRepository(db Querier) CannedResponseRepository {
	return &cannedResponseRepository{db: db}
}

func (r *cannedResponseRepository) Create(ctx context.Context, response *domain.CannedResponse) error {
	const query = `
        INSERT INTO canned_responses (title, content, shortcut, category, created_by_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		response.Title,
		response.Content,
		response.Shortcut,
		response.Category,
		response.CreatedByID,
	).Scan(&response.ID, &response.CreatedAt)
}

func (r *cannedResponseRepository) List(ctx context.Context) ([]domain.CannedResponse, error) {
	const query = `
        SELECT id, title, content, shortcut, category, created_by_id, created_at
        FROM canned_responses ORDER BY title ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CannedResponse
	for rows.Next() {
		var response domain.CannedResponse
		if err := rows.Scan(
			&response.ID,
			&response.Title,
			&response.Content,
			&response.Shortcut,
			&response.Category,
			&response.CreatedByID,
			&response.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}
