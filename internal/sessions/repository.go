package sessions

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

const sessionColumns = `id, title, speaker, room, start_time, end_time, description, created_at, updated_at`

// Repository handles session persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sessions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all sessions ordered by start time.
func (r *Repository) List(ctx context.Context) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY start_time ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Session{}
	for rows.Next() {
		var s models.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns a session by ID, or a NotFoundError.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	err := scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("session", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Exists reports whether a session with id exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// ReplaceAll deletes every session (and, by cascade, its feedback) and inserts list in one
// transaction. Sessions without an ID are given a new one.
func (r *Repository) ReplaceAll(ctx context.Context, list []models.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	for i := range list {
		if err := insertSession(ctx, tx, &list[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Create inserts a single session.
func (r *Repository) Create(ctx context.Context, s *models.Session) error {
	return insertSession(ctx, r.pool, s)
}

// UpdateTimes rewrites the start and end of every given session in one transaction.
func (r *Repository) UpdateTimes(ctx context.Context, list []models.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `UPDATE sessions SET start_time = $2, end_time = $3, updated_at = NOW() WHERE id = $1`
	for _, s := range list {
		if _, err := tx.Exec(ctx, query, s.ID, s.StartTime, s.EndTime); err != nil {
			return fmt.Errorf("update session %s: %w", s.ID, err)
		}
	}
	return tx.Commit(ctx)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSession(ctx context.Context, q execQuerier, s *models.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	const query = `INSERT INTO sessions (id, title, speaker, room, start_time, end_time, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	if err := q.QueryRow(ctx, query, s.ID, s.Title, s.Speaker, s.Room, s.StartTime, s.EndTime, s.Description).
		Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("insert session %q: %w", s.Title, err)
	}
	return nil
}

func scanSession(row pgx.Row, s *models.Session) error {
	return row.Scan(&s.ID, &s.Title, &s.Speaker, &s.Room, &s.StartTime, &s.EndTime, &s.Description, &s.CreatedAt, &s.UpdatedAt)
}
