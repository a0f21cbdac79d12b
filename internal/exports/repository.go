package exports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
)

// Repository handles export bookkeeping.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an exports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending export.
func (r *Repository) Create(ctx context.Context) (*models.Export, error) {
	e := &models.Export{ID: uuid.New(), Status: models.ExportPending}
	const query = `INSERT INTO exports (id, status) VALUES ($1, $2) RETURNING created_at`
	if err := r.pool.QueryRow(ctx, query, e.ID, e.Status).Scan(&e.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}
	return e, nil
}

// GetByID returns an export, or a NotFoundError.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Export, error) {
	const query = `SELECT id, status, s3_key, error, created_at, completed_at FROM exports WHERE id = $1`
	var e models.Export
	err := r.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Status, &e.S3Key, &e.Error, &e.CreatedAt, &e.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("export", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MarkCompleted records the uploaded object key.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, key string) error {
	const query = `UPDATE exports SET status = 'completed', s3_key = $2, error = NULL, completed_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, key)
	return err
}

// MarkFailed records why the export gave up.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	const query = `UPDATE exports SET status = 'failed', error = $2, completed_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, reason)
	return err
}
