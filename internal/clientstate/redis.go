package clientstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "client_state:"

// RedisStorage keeps the state of one client id in Redis, so several processes on the
// same device (or a kiosk fleet sharing an id) see the same favorites.
type RedisStorage struct {
	client   *redis.Client
	clientID string
}

// NewRedisStorage scopes storage to clientID.
func NewRedisStorage(client *redis.Client, clientID string) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if clientID == "" {
		return nil, errors.New("client id cannot be empty")
	}
	return &RedisStorage{client: client, clientID: clientID}, nil
}

func (r *RedisStorage) redisKey(key string) string {
	return fmt.Sprintf("%s%s:%s", stateKeyPrefix, r.clientID, key)
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
