package kv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// MemoryStore implements Store in process memory. Values round-trip through
// JSON so Get/Set behave exactly like the Redis store; used by tests and
// single-node development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*memoryItem
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*memoryItem)}
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = append([]byte(nil), v...)
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = &memoryItem{data: data}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	item, ok := s.data[key]
	s.mu.RUnlock()

	if !ok || item.expired() {
		return ErrNotFound
	}

	if bytesPtr, ok := dest.(*[]byte); ok {
		*bytesPtr = append([]byte(nil), item.data...)
		return nil
	}
	return json.Unmarshal(item.data, dest)
}

func (s *MemoryStore) GetByPrefix(_ context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k, item := range s.data {
		if strings.HasPrefix(k, prefix) && !item.expired() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		values = append(values, append([]byte(nil), s.data[k].data...))
	}
	return values, nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.data[key]
	return ok && !item.expired(), nil
}

func (s *MemoryStore) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.data[key]; ok && !item.expired() {
		return "", false, nil
	}
	token := newLockToken()
	s.data[key] = &memoryItem{data: []byte(token), expireAt: time.Now().Add(ttl)}
	return token, true, nil
}

func (s *MemoryStore) Unlock(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.data[key]; ok && !item.expired() && string(item.data) == token {
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
