package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"books-crud-api/internal/infrastructure/database"
)

// envParser gom lỗi parse để báo tất cả biến sai trong một lần.
type envParser struct {
	errs []error
}

func (p *envParser) int(key, def string) int {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

func (p *envParser) duration(key, def string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

// LoadDatabaseConfig đọc DB_* env vars. dbName (STORAGE_DATABASE_NAME) là default, DB_NAME override.
func LoadDatabaseConfig(dbName string) (*database.DBConfig, error) {
	var p envParser

	cfg := &database.DBConfig{
		URL:      getEnv("DB_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.int("DB_PORT", "5432"),
		Username: getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", dbName),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxConns:          int32(p.int("DB_MAX_CONNECTIONS", "25")),
		MinConns:          int32(p.int("DB_MIN_CONNECTIONS", "5")),
		MaxConnLifetime:   p.duration("DB_MAX_CONN_LIFETIME", "5m"),
		MaxConnIdleTime:   p.duration("DB_MAX_CONN_IDLE_TIME", "1m"),
		HealthCheckPeriod: p.duration("DB_HEALTH_CHECK_PERIOD", "1m"),

		MaxRetries:     p.int("DB_MAX_RETRIES", "5"),
		RetryDelay:     p.duration("DB_RETRY_DELAY", "1s"),
		ConnectTimeout: p.duration("DB_CONNECT_TIMEOUT", "10s"),

		CommandMaxRetries:    p.int("DB_COMMAND_MAX_RETRIES", "5"),
		CommandMaxRetryDelay: p.duration("DB_COMMAND_MAX_RETRY_DELAY", "30s"),
		CommandTimeout:       p.duration("DB_COMMAND_TIMEOUT", "30s"),
		BatchSize:            p.int("DB_BATCH_SIZE", "42"),
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
