package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Redis   RedisConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type LoggerConfig struct {
	Level string
}

// StorageConfig chọn backend lưu trữ khi start.
// UseInMemory = true → mutex-guarded list, false → PostgreSQL.
type StorageConfig struct {
	UseInMemory  bool
	DatabaseName string
	Seed         bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
	TTL      time.Duration
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Books CRUD API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			UseInMemory:  getEnvBool("STORAGE_USE_IN_MEMORY", true),
			DatabaseName: getEnv("STORAGE_DATABASE_NAME", "BooksCrudApi.Database"),
			Seed:         getEnvBool("STORAGE_SEED", true),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("invalid APP_ENV %q", c.App.Environment)
	}

	if c.App.Port == "" {
		return fmt.Errorf("APP_PORT must be set")
	}

	if strings.TrimSpace(c.Storage.DatabaseName) == "" {
		return fmt.Errorf("STORAGE_DATABASE_NAME must not be empty")
	}

	if c.Redis.Enabled {
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST must be set when REDIS_ENABLED=true")
		}
		if c.Redis.TTL <= 0 {
			return fmt.Errorf("CACHE_TTL must be positive")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
