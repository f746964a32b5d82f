package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-crud-api/internal/domains/book/model"
	"books-crud-api/internal/infrastructure/database"
)

func TestStorageError(t *testing.T) {
	exhausted := fmt.Errorf("get book: %w after 5 retries: %w", database.ErrRetriesExhausted, errors.New("conn reset"))
	err := storageError("get book", exhausted)
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.ErrorIs(t, err, database.ErrRetriesExhausted)

	plain := storageError("get book", errors.New("syntax error"))
	assert.NotErrorIs(t, plain, model.ErrStorageUnavailable)
	assert.Contains(t, plain.Error(), "get book")
}

// newTestPostgres kết nối tới TEST_DATABASE_URL, skip nếu không set.
// Bảng books bị truncate trước mỗi test.
func newTestPostgres(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	policy := database.RetryPolicy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, Timeout: 5 * time.Second}
	repo := NewPostgresRepository(pool, policy, 2, nil)
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE books`)
	require.NoError(t, err)
	return repo
}

func TestPostgresRepository_CRUD(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Book{
		Title:           "1984",
		Author:          "Orwell",
		PublicationYear: 1949,
		Price:           decimal.RequireFromString("11.99"),
		IsAvailable:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.UpdatedOn)
	assert.Equal(t, created.CreatedOn, *created.UpdatedOn)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, got)

	patch := got.Clone()
	patch.Price = decimal.RequireFromString("9.99")
	updated, err := repo.Update(ctx, created.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, decimal.RequireFromString("9.99").Equal(updated.Price))
	assert.Equal(t, "1984", updated.Title)
	assert.Equal(t, created.CreatedOn, updated.CreatedOn)
	assert.False(t, updated.UpdatedOn.Before(*created.UpdatedOn))

	missing, err := repo.Update(ctx, uuid.New(), patch)
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := repo.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostgresRepository_SeedAndPaginate(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	n, err := repo.Seed(ctx, SampleBooks(UTCNow()))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.Seed(ctx, SampleBooks(UTCNow()))
	require.NoError(t, err)
	assert.Zero(t, n)

	items, total, err := repo.GetPaginated(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "The Great Gatsby", items[0].Title)

	items, total, err = repo.GetPaginated(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, items)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
