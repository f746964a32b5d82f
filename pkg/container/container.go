package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"books-crud-api/internal/config"
	bookHandler "books-crud-api/internal/domains/book/handler"
	bookRepo "books-crud-api/internal/domains/book/repository"
	bookService "books-crud-api/internal/domains/book/service"
	infraCache "books-crud-api/internal/infrastructure/cache"
	"books-crud-api/internal/infrastructure/database"
	"books-crud-api/pkg/cache"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"

	poolMonitorInterval = 30 * time.Second
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của application.
// Thứ tự khởi tạo: Config → Storage (memory | Postgres) → Cache → Repository → Service → Handler.
type Container struct {
	// INFRASTRUCTURE
	Config *config.Config
	DB     *database.PostgresDB // nil khi chạy in-memory
	Cache  cache.Cache

	redis         *infraCache.RedisClient
	storageDriver string

	// REPOSITORY
	BookRepo bookRepo.BookRepository

	// SERVICE
	BookService bookService.ServiceInterface

	// HANDLER
	BookHandler *bookHandler.Handler
}

// NewContainer load config từ environment rồi build dependency graph.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return New(context.Background(), cfg)
}

// New build container từ config có sẵn.
// Lỗi ở bất kỳ bước nào sẽ cleanup những gì đã khởi tạo.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] Initializing...")

	c := &Container{Config: cfg}
	if err := c.build(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	log.Info().Str("storage", c.storageDriver).Bool("redis", c.redis != nil).Msg("[CONTAINER] Ready")
	return c, nil
}

func (c *Container) build(ctx context.Context) error {
	// STEP 1: STORAGE
	if err := c.initStorage(ctx); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	// STEP 2: CACHE
	c.initCache(ctx)

	// STEP 3: SEED
	if err := c.seed(ctx); err != nil {
		return fmt.Errorf("failed to seed storage: %w", err)
	}

	// STEP 4: SERVICES + HANDLERS
	c.BookService = bookService.NewService(c.BookRepo, c.Cache, c.Config.Redis.TTL, nil)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	return nil
}

// StorageDriver trả về backend đang dùng: in-memory hoặc postgres.
func (c *Container) StorageDriver() string {
	return c.storageDriver
}

// ========================================
// INIT STEPS
// ========================================

func (c *Container) initStorage(ctx context.Context) error {
	if c.Config.Storage.UseInMemory {
		c.storageDriver = StorageInMemory
		c.BookRepo = bookRepo.NewMemoryRepository(nil)
		return nil
	}

	c.storageDriver = StoragePostgres
	dbConfig, err := config.LoadDatabaseConfig(c.Config.Storage.DatabaseName)
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	repo := bookRepo.NewPostgresRepository(db.Pool, dbConfig.RetryPolicy(), dbConfig.BatchSize, nil)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	c.BookRepo = repo

	db.StartPoolMonitor(poolMonitorInterval)

	return nil
}

// initCache: Redis khi REDIS_ENABLED, ngược lại Noop.
// Redis không kết nối được không chặn startup, fallback về Noop.
func (c *Container) initCache(ctx context.Context) {
	if !c.Config.Redis.Enabled {
		c.Cache = cache.NewNoop()
		return
	}

	rc := infraCache.NewRedisClient(c.Config.Redis)
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] Redis unavailable, caching disabled")
		_ = rc.Close()
		c.Cache = cache.NewNoop()
		return
	}

	c.redis = rc
	c.Cache = infraCache.NewRedisCache(rc.Client)
}

func (c *Container) seed(ctx context.Context) error {
	if !c.Config.Storage.Seed {
		return nil
	}
	seeder, ok := c.BookRepo.(bookRepo.Seeder)
	if !ok {
		return nil
	}

	n, err := seeder.Seed(ctx, bookRepo.SampleBooks(bookRepo.UTCNow()))
	if err != nil {
		return err
	}
	log.Info().Int("books", n).Str("storage", c.storageDriver).Msg("[CONTAINER] Sample data seeded")
	return nil
}

// ========================================
// CLEANUP
// ========================================

// Cleanup đóng tài nguyên; gọi nhiều lần an toàn.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close database")
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close Redis")
		}
		c.redis = nil
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}
