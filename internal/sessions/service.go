package sessions

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/models"
)

// Store is the persistence the service reads from.
type Store interface {
	List(ctx context.Context) ([]models.Session, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service serves the session list through the cache.
type Service struct {
	store  Store
	cache  *Cache
	logger *zap.Logger
}

// NewService creates a sessions service. cache may be nil.
func NewService(store Store, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// List returns all sessions ordered by start time.
func (s *Service) List(ctx context.Context) ([]models.Session, error) {
	if list, ok := s.cache.Get(ctx); ok {
		return list, nil
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, list)
	return list, nil
}

// Exists reports whether session id exists.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.store.Exists(ctx, id)
}

// Invalidate drops the cached list after the sessions table changed.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx)
}
