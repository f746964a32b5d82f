package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"books-crud-api/internal/domains/book/model"
	"books-crud-api/internal/domains/book/repository"
	"books-crud-api/pkg/cache"
	"books-crud-api/pkg/logger"
)

const (
	detailKeyPrefix = "books:detail:"
	writeStripes    = 64
)

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.BookRepository
	cache    cache.Cache
	cacheTTL time.Duration
	now      repository.Clock

	// writes[i] tăng mỗi khi một book thuộc stripe i được ghi.
	// GetByID so sánh trước/sau để không để lại bản cũ trong cache.
	writes [writeStripes]atomic.Uint64
}

// NewService - Constructor with DI. clock nil → repository.UTCNow.
func NewService(repo repository.BookRepository, c cache.Cache, cacheTTL time.Duration, clock repository.Clock) ServiceInterface {
	if c == nil {
		c = cache.NewNoop()
	}
	if clock == nil {
		clock = repository.UTCNow
	}
	return &BookService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		now:      clock,
	}
}

func (s *BookService) ListAll(ctx context.Context) ([]model.BookResponse, error) {
	books, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return model.ToBookResponses(books), nil
}

// ListPaginated - skip/take đã được validate ở handler.
func (s *BookService) ListPaginated(ctx context.Context, skip, take int) (model.PaginatedResponse[model.BookResponse], error) {
	books, total, err := s.repo.GetPaginated(ctx, skip, take)
	if err != nil {
		return model.PaginatedResponse[model.BookResponse]{}, err
	}
	return model.NewPaginatedResponse(model.ToBookResponses(books), total, skip, take), nil
}

// GetByID - read-through cache theo id
func (s *BookService) GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	key := detailKey(id)

	var cached model.BookResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		// cache lỗi không chặn request, đọc thẳng từ storage
		logger.Warn("[BookService] cache get failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	gen := s.writeGen(id)
	before := gen.Load()

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, nil
	}

	resp := model.ToBookResponse(book)
	if gen.Load() != before {
		// có write chen vào, bản vừa đọc có thể đã cũ
		return &resp, nil
	}
	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		logger.Warn("[BookService] cache set failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if gen.Load() != before {
		// write hoàn tất giữa check và Set
		s.invalidate(ctx, id)
	}
	return &resp, nil
}

func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error) {
	entity := model.ToBookEntity(req)
	// repository sẽ gán lại ID và timestamps
	entity.CreatedOn = s.now()

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return nil, err
	}

	logger.Info("[BookService] book created", map[string]interface{}{"book_id": created.ID.String()})
	resp := model.ToBookResponse(created)
	return &resp, nil
}

// Update - merge partial patch đúng một lần rồi ghi toàn bộ row qua repository.
func (s *BookService) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	model.ApplyUpdate(existing, req)
	now := s.now()
	existing.UpdatedOn = &now

	s.beginWrite(ctx, id)
	updated, err := s.repo.Update(ctx, id, existing)
	s.endWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// bị xoá giữa lúc đọc và ghi
		return nil, nil
	}

	resp := model.ToBookResponse(updated)
	return &resp, nil
}

func (s *BookService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.beginWrite(ctx, id)
	deleted, err := s.repo.Delete(ctx, id)
	s.endWrite(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Info("[BookService] book deleted", map[string]interface{}{"book_id": id.String()})
	}
	return deleted, nil
}

func (s *BookService) writeGen(id uuid.UUID) *atomic.Uint64 {
	return &s.writes[int(id[0])%writeStripes]
}

// beginWrite/endWrite bao quanh mỗi write. Key bị xoá cả trước và sau,
// generation tăng trước và sau để reader đang chạy bỏ qua hoặc xoá lại bản nó đã Set.
func (s *BookService) beginWrite(ctx context.Context, id uuid.UUID) {
	s.writeGen(id).Add(1)
	s.invalidate(ctx, id)
}

func (s *BookService) endWrite(ctx context.Context, id uuid.UUID) {
	s.writeGen(id).Add(1)
	s.invalidate(ctx, id)
}

func (s *BookService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, detailKey(id)); err != nil {
		logger.Warn("[BookService] cache invalidate failed", map[string]interface{}{"book_id": id.String(), "error": err.Error()})
	}
}

func detailKey(id uuid.UUID) string {
	return detailKeyPrefix + id.String()
}
