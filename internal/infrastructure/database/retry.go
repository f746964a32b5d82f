package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// ErrRetriesExhausted được wrap khi một transient failure vẫn còn sau MaxRetries lần thử lại.
var ErrRetriesExhausted = errors.New("storage still failing after retries")

// RetryPolicy điều khiển retry cho từng command.
// Attempt n (n >= 1) chờ BaseDelay * 2^(n-1), tối đa MaxDelay.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Timeout áp dụng cho từng attempt, 0 = không giới hạn thêm.
	Timeout time.Duration
}

// Backoff trả về delay trước lần retry thứ attempt (bắt đầu từ 1).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Do chạy fn, retry khi lỗi là transient. Lỗi không transient trả về ngay,
// không retry. Caller phía trên chỉ thấy kết quả cuối cùng.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := WithRetry(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithRetry là bản có return value của RetryPolicy.Do.
// Chỉ dùng cho thao tác idempotent: một attempt timeout có thể đã được commit.
func WithRetry[T any](ctx context.Context, p RetryPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return retryLoop(ctx, p, op, IsTransient, fn)
}

// WithWriteRetry dành cho write không idempotent (INSERT, DELETE).
// Chỉ retry khi chắc chắn attempt trước chưa được server áp dụng, xem IsSafeToRetryWrite.
func WithWriteRetry[T any](ctx context.Context, p RetryPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return retryLoop(ctx, p, op, IsSafeToRetryWrite, fn)
}

func retryLoop[T any](ctx context.Context, p RetryPolicy, op string, retryable func(error) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		result, err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return result, nil
		}

		// Caller đã cancel / hết deadline → dừng ngay
		if ctx.Err() != nil {
			return zero, err
		}

		if !retryable(err) {
			return zero, err
		}

		if attempt >= p.MaxRetries {
			return zero, fmt.Errorf("%s: %w after %d retries: %w", op, ErrRetriesExhausted, attempt, err)
		}

		delay := p.Backoff(attempt + 1)
		log.Warn().
			Err(err).
			Str("op", op).
			Int("retry", attempt+1).
			Int("max_retries", p.MaxRetries).
			Dur("delay", delay).
			Msg("[DATABASE] Transient failure, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: retry cancelled: %w", op, ctx.Err())
		}
	}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

// IsTransient phân loại lỗi có khả năng tự hết khi thử lại:
// mất kết nối, timeout, serialization failure, deadlock, server quá tải / đang restart.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// Per-attempt timeout hết hạn (caller ctx vẫn còn sống)
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

// IsSafeToRetryWrite hẹp hơn IsTransient: bỏ qua timeout và lỗi mạng giữa chừng,
// vì khi đó server có thể đã commit mà client không nhận được reply.
// PgError nghĩa là server đã trả lỗi cho statement, nên statement không được áp dụng.
func IsSafeToRetryWrite(err error) bool {
	if err == nil {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}
	return false
}

func isTransientSQLState(code string) bool {
	switch code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"53300", // too_many_connections
		"55P03", // lock_not_available
		"57P01", // admin_shutdown
		"57P02", // crash_shutdown
		"57P03": // cannot_connect_now
		return true
	}

	// Class 08: Connection Exception
	return len(code) == 5 && code[:2] == "08"
}
