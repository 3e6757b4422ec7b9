package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 5,
		Prefix:       "lovepulse",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
	}, nil
}

// Client returns the underlying redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	key = s.wrapKey(key)

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	key = s.wrapKey(key)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	if bytesPtr, ok := dest.(*[]byte); ok {
		*bytesPtr = data
		return nil
	}

	return json.Unmarshal(data, dest)
}

// GetByPrefix scans matching keys and returns their raw values, ordered by
// key so callers see a stable listing.
func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	pattern := s.wrapKey(prefix) + "*"

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	values := make([][]byte, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			values = append(values, []byte(str))
		}
	}
	return values, nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return s.client.Unlink(ctx, s.wrapKeys(keys...)...).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.wrapKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// unlockScript deletes the lock only when the caller still owns it.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func (s *RedisStore) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := newLockToken()
	ok, err := s.client.SetNX(ctx, s.wrapKey(key), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (s *RedisStore) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, s.client, []string{s.wrapKey(key)}, token).Err()
}

func (s *RedisStore) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *RedisStore) wrapKeys(keys ...string) []string {
	wrapped := make([]string, len(keys))
	for i, key := range keys {
		wrapped[i] = s.wrapKey(key)
	}
	return wrapped
}
