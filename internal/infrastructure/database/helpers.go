package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Ping kiểm tra database connection có còn sống và responsive không
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close đóng tất cả connections trong pool. Safe to call multiple times.
func (db *PostgresDB) Close() error {
	db.stopPoolMonitor()

	if db.Pool == nil {
		log.Debug().Msg("[DATABASE] Pool is already closed or was never initialized")
		return nil
	}

	log.Info().Msg("[DATABASE] Closing database connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Info().Msg("[DATABASE] Connection pool closed successfully")

	return nil
}

// PoolStats là snapshot của connection pool, trả về qua health endpoint
type PoolStats struct {
	AcquireCount         int64         `json:"acquireCount"`
	AvgAcquireDuration   time.Duration `json:"avgAcquireDurationNs"`
	AcquiredConns        int32         `json:"acquiredConns"`
	CanceledAcquireCount int64         `json:"canceledAcquireCount"`
	IdleConns            int32         `json:"idleConns"`
	MaxConns             int32         `json:"maxConns"`
	TotalConns           int32         `json:"totalConns"`
}

// Stats trả về snapshot của connection pool statistics
func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AvgAcquireDuration:   calculateAvgDuration(raw.AcquireDuration(), raw.AcquireCount()),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, nil
}

func calculateAvgDuration(totalDuration time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return totalDuration / time.Duration(count)
}

// Ngưỡng cảnh báo của pool monitor.
const (
	poolUtilizationWarnPct = 80.0
	acquireLatencyWarn     = 100 * time.Millisecond
)

// poolWarnings trả về các cảnh báo cho một snapshot, rỗng nếu pool khoẻ.
func poolWarnings(stats PoolStats) []string {
	var warnings []string
	if stats.MaxConns > 0 {
		pct := float64(stats.AcquiredConns) / float64(stats.MaxConns) * 100
		if pct > poolUtilizationWarnPct {
			warnings = append(warnings, fmt.Sprintf("pool utilization %.0f%% (%d/%d)", pct, stats.AcquiredConns, stats.MaxConns))
		}
	}
	if stats.AvgAcquireDuration > acquireLatencyWarn {
		warnings = append(warnings, fmt.Sprintf("avg acquire latency %s", stats.AvgAcquireDuration))
	}
	return warnings
}

// StartPoolMonitor chạy MonitorPoolHealth trong background. Gọi lại khi đang chạy thì bỏ qua.
func (db *PostgresDB) StartPoolMonitor(interval time.Duration) {
	if db.monitorDone != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	db.monitorStop, db.monitorDone = cancel, done

	go func() {
		defer close(done)
		db.MonitorPoolHealth(ctx, interval)
	}()
}

// stopPoolMonitor cancel monitor và chờ goroutine thoát, để Close không nil Pool khi Stats đang chạy.
func (db *PostgresDB) stopPoolMonitor() {
	if db.monitorStop == nil {
		return
	}
	db.monitorStop()
	<-db.monitorDone
	db.monitorStop, db.monitorDone = nil, nil
}

// MonitorPoolHealth định kỳ log cảnh báo khi pool gần cạn. Dừng khi ctx bị cancel.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("[MONITOR] Pool monitor stopped")
			return
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				log.Warn().Err(err).Msg("[MONITOR] Pool stats unavailable")
				continue
			}
			for _, w := range poolWarnings(*stats) {
				log.Warn().Msg("[MONITOR] " + w)
			}
		}
	}
}
