package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"books-crud-api/internal/domains/book/model"
)

// MemoryRepository - in-process store, một mutex duy nhất bao toàn bộ slice.
// Mọi giá trị trả ra là bản copy, caller không giữ được pointer vào store.
type MemoryRepository struct {
	mu    sync.Mutex
	books []model.Book
	now   Clock
}

var (
	_ BookRepository = (*MemoryRepository)(nil)
	_ Seeder         = (*MemoryRepository)(nil)
)

// NewMemoryRepository tạo store rỗng. clock nil → UTCNow.
func NewMemoryRepository(clock Clock) *MemoryRepository {
	if clock == nil {
		clock = UTCNow
	}
	return &MemoryRepository{now: clock}
}

func (r *MemoryRepository) GetAll(ctx context.Context) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.copyRange(0, len(r.books)), nil
}

func (r *MemoryRepository) GetPaginated(ctx context.Context, skip, take int) ([]model.Book, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := len(r.books)
	if skip < 0 {
		skip = 0
	}
	if skip >= total || take <= 0 {
		return []model.Book{}, total, nil
	}

	end := total
	if take < total-skip {
		end = skip + take
	}
	return r.copyRange(skip, end), total, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		return r.books[i].Clone(), nil
	}
	return nil, nil
}

func (r *MemoryRepository) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := book.Clone()
	stored.ID = r.newID()
	now := r.now()
	stored.CreatedOn = now
	stored.UpdatedOn = &now

	r.books = append(r.books, *stored)
	return stored.Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id uuid.UUID, book *model.Book) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}

	current := &r.books[i]
	ts := nextUpdatedOn(r.now(), current)
	current.CopyMutableFrom(book)
	current.UpdatedOn = &ts

	return current.Clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.books = append(r.books[:i], r.books[i+1:]...)
	return true, nil
}

func (r *MemoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.indexOf(id) >= 0, nil
}

// Seed nạp books nguyên trạng (giữ ID/timestamps) khi store rỗng.
func (r *MemoryRepository) Seed(ctx context.Context, books []model.Book) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.books) > 0 {
		return 0, nil
	}
	for i := range books {
		r.books = append(r.books, *books[i].Clone())
	}
	return len(books), nil
}

// ============ helpers (caller giữ lock) ============

func (r *MemoryRepository) indexOf(id uuid.UUID) int {
	for i := range r.books {
		if r.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) newID() uuid.UUID {
	for {
		id := uuid.New()
		if r.indexOf(id) < 0 {
			return id
		}
	}
}

func (r *MemoryRepository) copyRange(from, to int) []model.Book {
	out := make([]model.Book, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, *r.books[i].Clone())
	}
	return out
}
