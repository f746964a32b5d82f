package cache

import (
	"context"
	"time"
)

// Noop là Cache luôn miss. Dùng khi REDIS_ENABLED=false.
type Noop struct{}

func NewNoop() Cache { return Noop{} }

func (Noop) Get(ctx context.Context, key string, dest interface{}) (bool, error) { return false, nil }

func (Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (Noop) Delete(ctx context.Context, keys ...string) error { return nil }

func (Noop) Ping(ctx context.Context) error { return nil }
