package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Soypete/star-interview-bot/types"
	goredis "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "interview:session:"

// RedisStore keeps sessions as JSON documents, one key per user.
// A non-zero ttl evicts sessions that have not been touched for that long.
type RedisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisStoreWithClient(rdb, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(rdb goredis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: defaultKeyPrefix, ttl: ttl}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

// Get loads and decodes the user's session.
func (r *RedisStore) Get(ctx context.Context, userID string) (*types.Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting session from redis: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}
	return &s, nil
}

// Save encodes the session and writes it with the configured ttl.
func (r *RedisStore) Save(ctx context.Context, s *types.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(s.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("error saving session to redis: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the redis client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
