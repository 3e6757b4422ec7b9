package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLockTokens(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	token, ok, err := s.TryLock(ctx, "lock:k", time.Minute)
	if err != nil || !ok || token == "" {
		t.Fatalf("TryLock = %q, %v, %v", token, ok, err)
	}

	if _, ok, _ := s.TryLock(ctx, "lock:k", time.Minute); ok {
		t.Fatal("second TryLock should fail while held")
	}

	// a stale holder's token must not release the current lock
	if err := s.Unlock(ctx, "lock:k", "stale-token"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, ok, _ := s.TryLock(ctx, "lock:k", time.Minute); ok {
		t.Fatal("mismatched token must not release the lock")
	}

	if err := s.Unlock(ctx, "lock:k", token); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	token2, ok, err := s.TryLock(ctx, "lock:k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock after release = %v, %v", ok, err)
	}
	if token2 == token {
		t.Error("tokens should be unique per acquisition")
	}
}

func TestMemoryStoreLockExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := s.TryLock(ctx, "lock:k", time.Millisecond); !ok {
		t.Fatal("first TryLock should succeed")
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := s.TryLock(ctx, "lock:k", time.Minute); !ok {
		t.Error("expired lock should be reacquirable")
	}
}
