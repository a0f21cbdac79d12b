package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
)

const pgForeignKeyViolation = "23503"

// Repository handles session feedback persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a feedback repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts feedback. A session that disappeared since validation yields a NotFoundError.
func (r *Repository) Create(ctx context.Context, f *models.Feedback) error {
	f.ID = uuid.New()
	const query = `INSERT INTO feedback (id, session_id, useful, learned, explore)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, query, f.ID, f.SessionID, f.Useful, f.Learned, f.Explore).Scan(&f.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperr.NotFound("session", f.SessionID.String())
	}
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// List returns feedback oldest first, optionally for one session only.
func (r *Repository) List(ctx context.Context, sessionID *uuid.UUID) ([]models.Feedback, error) {
	query := `SELECT id, session_id, useful, learned, explore, created_at FROM feedback`
	var args []any
	if sessionID != nil {
		query += ` WHERE session_id = $1`
		args = append(args, *sessionID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Useful, &f.Learned, &f.Explore, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}
