package sessions

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/pkg/redis"
)

const cacheKey = "sessions:all"

// Cache keeps the ordered session list in Redis for a short TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a session list cache. A ttl <= 0 disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached list and whether it was present.
func (c *Cache) Get(ctx context.Context) ([]models.Session, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	var list []models.Session
	ok, err := c.client.GetJSON(ctx, cacheKey, &list)
	if err != nil {
		c.logger.Warn("sessions cache read failed", zap.Error(err))
		return nil, false
	}
	return list, ok
}

// Set stores list.
func (c *Cache) Set(ctx context.Context, list []models.Session) {
	if c == nil || c.ttl <= 0 {
		return
	}
	if err := c.client.SetJSON(ctx, cacheKey, list, c.ttl); err != nil {
		c.logger.Warn("sessions cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Warn("sessions cache invalidate failed", zap.Error(err))
	}
}
