package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	keyToken    = "carvalue:authToken"
	keyUserID   = "carvalue:userId"
	keyUserName = "carvalue:userName"
)

// RedisStore keeps the session in Redis. Used by kiosk deployments where
// several terminals share one login.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	if err := r.client.MSet(ctx,
		keyToken, s.Token,
		keyUserID, s.UserID,
		keyUserName, s.UserName,
	).Err(); err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context) (*Session, error) {
	vals, err := r.client.MGet(ctx, keyToken, keyUserID, keyUserName).Result()
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	s := Session{}
	if v, ok := vals[0].(string); ok {
		s.Token = v
	}
	if v, ok := vals[1].(string); ok {
		s.UserID = v
	}
	if v, ok := vals[2].(string); ok {
		s.UserName = v
	}
	if s.Token == "" {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, keyToken, keyUserID, keyUserName).Err(); err != nil {
		return fmt.Errorf("session: redis clear: %w", err)
	}
	return nil
}
