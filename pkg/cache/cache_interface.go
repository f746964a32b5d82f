package cache

import (
	"context"
	"time"
)

// Cache là key-value store có TTL đứng trước storage.
// Implementations: RedisCache (infrastructure/cache), Noop, fake trong tests.
type Cache interface {
	// Get decode value của key vào dest. false, nil nghĩa là miss và dest giữ nguyên.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete bỏ qua keys không tồn tại.
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
