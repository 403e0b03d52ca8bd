package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/fornodoro/backend/pkg/redis"
)

// Store persists session carts.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type cartBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

type redisStore struct {
	backend cartBackend
	ttl     time.Duration
}

// NewRedisStore builds a cart store over the shared Redis client. The TTL
// resets on every save, so active carts never expire mid-session.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &redisStore{backend: client, ttl: ttl}, nil
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.backend.Get(ctx, s.backend.CartKey(sessionID))
	if err != nil {
		if redisclient.IsNil(err) {
			return &Cart{SessionID: sessionID, Lines: []Line{}}, nil
		}
		return nil, fmt.Errorf("redis: load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	cart.SessionID = sessionID
	if cart.Lines == nil {
		cart.Lines = []Line{}
	}
	return &cart, nil
}

func (s *redisStore) Save(ctx context.Context, cart *Cart) error {
	if cart == nil || cart.SessionID == "" {
		return fmt.Errorf("cart session id is required")
	}
	cart.UpdatedAt = time.Now()
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.backend.Set(ctx, s.backend.CartKey(cart.SessionID), string(payload), s.ttl); err != nil {
		return fmt.Errorf("redis: save cart: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.backend.Del(ctx, s.backend.CartKey(sessionID)); err != nil {
		return fmt.Errorf("redis: delete cart: %w", err)
	}
	return nil
}
