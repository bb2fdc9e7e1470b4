package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openfleet/fleetgate/internal/common/cnst"
	"github.com/openfleet/fleetgate/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the Store interface using Redis
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store instance
func NewRedisStore(cfg config.SessionRedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Save stores a session under its id with a TTL matching its expiry
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return cnst.ErrSessionNotFound
	}
	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

// Get returns the session with the given id
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, cnst.ErrSessionNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Expired() {
		return nil, cnst.ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}
