package kv

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("kv: key not found")
)

func newLockToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Store defines the key-value operations the service relies on. It is the
// single source of truth for durable state; no transactions are assumed
// beyond the per-key lock primitives.
type Store interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, dest interface{}) error
	GetByPrefix(ctx context.Context, prefix string) ([][]byte, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// TryLock acquires key for ttl and returns an owner token. Unlock releases
	// only when the token still matches, so a holder that outlives its ttl
	// cannot delete the next holder's lock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, key, token string) error

	Close() error
}
