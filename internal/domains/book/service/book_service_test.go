package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-crud-api/internal/domains/book/model"
	"books-crud-api/internal/domains/book/repository"
)

// fakeCache - map-backed cache.Cache, lưu JSON giống RedisCache.
type fakeCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	getErr  error
	gets    int
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }

// countingRepo đếm số lần GetByID chạm storage.
type countingRepo struct {
	*repository.MemoryRepository
	getByID int
}

func (r *countingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	r.getByID++
	return r.MemoryRepository.GetByID(ctx, id)
}

type failingRepo struct {
	repository.BookRepository
	err error
}

func (r failingRepo) GetAll(ctx context.Context) ([]model.Book, error) { return nil, r.err }

func (r failingRepo) GetPaginated(ctx context.Context, skip, take int) ([]model.Book, int, error) {
	return nil, 0, r.err
}

func (r failingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return nil, r.err
}

// slowReadRepo giữ lần GetByID đầu tiên cho tới khi release bị đóng.
type slowReadRepo struct {
	*repository.MemoryRepository
	once    sync.Once
	reading chan struct{}
	release chan struct{}
}

func (r *slowReadRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := r.MemoryRepository.GetByID(ctx, id)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.reading)
		<-r.release
	}
	return book, err
}

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestService(t *testing.T) (*BookService, *countingRepo, *fakeCache) {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	repo := &countingRepo{MemoryRepository: repository.NewMemoryRepository(clock.Now)}
	c := newFakeCache()
	svc := NewService(repo, c, time.Minute, clock.Now).(*BookService)
	return svc, repo, c
}

func orwellRequest() model.CreateBookRequest {
	return model.CreateBookRequest{
		Title:           "1984",
		Author:          "Orwell",
		PublicationYear: 1949,
		Price:           decimal.RequireFromString("11.99"),
	}
}

func TestBookService_Create(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Create(context.Background(), orwellRequest())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), orwellRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	require.NotNil(t, first.UpdatedOn)
	assert.Equal(t, first.CreatedOn, *first.UpdatedOn)
	assert.True(t, first.IsAvailable)
	assert.Equal(t, "1984", first.Title)
}

func TestBookService_GetByID_ReadThroughCache(t *testing.T) {
	svc, repo, c := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, orwellRequest())
	require.NoError(t, err)

	first, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.getByID, "second read served from cache")
	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Contains(t, c.items, detailKey(created.ID))
}

func TestBookService_GetByID_CacheFailureFallsBackToStorage(t *testing.T) {
	svc, repo, c := newTestService(t)
	ctx := context.Background()
	c.getErr = errors.New("redis down")

	created, err := svc.Create(ctx, orwellRequest())
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, repo.getByID)
}

func TestBookService_GetByID_Missing(t *testing.T) {
	svc, _, c := newTestService(t)

	got, err := svc.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, c.items, "absence is not cached")
}

func TestBookService_Update_PartialPatch(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, orwellRequest())
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, created.ID) // warm cache
	require.NoError(t, err)

	price := decimal.RequireFromString("9.99")
	updated, err := svc.Update(ctx, created.ID, model.UpdateBookRequest{Price: &price})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, "1984", updated.Title)
	assert.Equal(t, "Orwell", updated.Author)
	assert.Equal(t, 1949, updated.PublicationYear)
	assert.Equal(t, created.CreatedOn, updated.CreatedOn)
	assert.True(t, updated.UpdatedOn.After(*created.UpdatedOn))

	assert.Contains(t, c.deletes, detailKey(created.ID))
	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(got.Price), "stale cache entry was invalidated")
}

func TestBookService_GetByID_ConcurrentUpdateLeavesNoStaleEntry(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	mem := repository.NewMemoryRepository(clock.Now)
	created, err := mem.Create(ctx, &model.Book{Title: "1984", Author: "Orwell"})
	require.NoError(t, err)

	repo := &slowReadRepo{MemoryRepository: mem, reading: make(chan struct{}), release: make(chan struct{})}
	c := newFakeCache()
	svc := NewService(repo, c, time.Minute, clock.Now)

	readDone := make(chan *model.BookResponse, 1)
	go func() {
		resp, _ := svc.GetByID(ctx, created.ID)
		readDone <- resp
	}()

	// reader đã đọc bản cũ và đang chờ, update chen vào
	<-repo.reading
	title := "Animal Farm"
	_, err = svc.Update(ctx, created.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	close(repo.release)

	old := <-readDone
	require.NotNil(t, old)
	assert.Equal(t, "1984", old.Title)

	fresh, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, "Animal Farm", fresh.Title)
}

func TestBookService_Update_Missing(t *testing.T) {
	svc, _, _ := newTestService(t)
	title := "x"

	got, err := svc.Update(context.Background(), uuid.New(), model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookService_Delete(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, orwellRequest())
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, c.items, detailKey(created.ID))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestBookService_ListPaginated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, orwellRequest())
		require.NoError(t, err)
	}

	page, err := svc.ListPaginated(ctx, 10, 10)
	require.NoError(t, err)

	assert.Len(t, page.Data, 10)
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 2, page.PageNumber)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasPreviousPage)
	assert.True(t, page.HasNextPage)

	page, err = svc.ListPaginated(ctx, 30, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 25, page.TotalCount)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 25)
}

func TestBookService_PropagatesStorageErrors(t *testing.T) {
	storageErr := errors.New("boom")
	svc := NewService(failingRepo{err: storageErr}, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.ListPaginated(ctx, 0, 10)
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storageErr)
}
