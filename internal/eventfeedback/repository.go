package eventfeedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julefagdag/agenda/internal/models"
)

// Repository handles event feedback persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event feedback repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts event feedback.
func (r *Repository) Create(ctx context.Context, f *models.EventFeedback) error {
	f.ID = uuid.New()
	const query = `INSERT INTO event_feedback (id, comment, rating)
		VALUES ($1, $2, $3)
		RETURNING created_at`
	if err := r.pool.QueryRow(ctx, query, f.ID, f.Comment, f.Rating).Scan(&f.CreatedAt); err != nil {
		return fmt.Errorf("insert event feedback: %w", err)
	}
	return nil
}

// ListNewestFirst returns all event feedback, most recent first.
func (r *Repository) ListNewestFirst(ctx context.Context) ([]models.EventFeedback, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, comment, rating, created_at FROM event_feedback ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.EventFeedback{}
	for rows.Next() {
		var f models.EventFeedback
		var rating *int16
		if err := rows.Scan(&f.ID, &f.Comment, &rating, &f.CreatedAt); err != nil {
			return nil, err
		}
		if rating != nil {
			v := int(*rating)
			f.Rating = &v
		}
		list = append(list, f)
	}
	return list, rows.Err()
}
