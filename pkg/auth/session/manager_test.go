package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemStore() *memStore {
	return &memStore{tokens: make(map[string]string)}
}

func (s *memStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = value.(string)
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[key]
	if !ok {
		return "", redislib.Nil
	}
	return token, nil
}

func (s *memStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.tokens, key)
	}
	return nil
}

func (s *memStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stored := store.tokens[store.AccessSessionKey(accessID)]; stored != token {
		t.Fatalf("expected stored token %q, got %q", token, stored)
	}

	if _, _, err := manager.Rotate(ctx, accessID, "forged"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.tokens[store.AccessSessionKey(accessID)]; exists {
		t.Fatalf("old session left behind after rotation")
	}
	if stored := store.tokens[store.AccessSessionKey(newAccessID)]; stored != newToken {
		t.Fatalf("expected new token stored, got %q", stored)
	}
}

func TestManagerRotateFailsAfterRevoke(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token after revoke, got %v", err)
	}
}

func TestManagerHasSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	if ok, err := manager.HasSession(ctx, accessID); err != nil || ok {
		t.Fatalf("expected no session before generate, got ok=%v err=%v", ok, err)
	}
	if _, err := manager.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok, err := manager.HasSession(ctx, accessID); err != nil || !ok {
		t.Fatalf("expected active session, got ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, err := manager.HasSession(ctx, accessID); err != nil || ok {
		t.Fatalf("expected session gone after revoke, got ok=%v err=%v", ok, err)
	}
}
