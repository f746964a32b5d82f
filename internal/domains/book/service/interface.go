package service

import (
	"context"

	"github.com/google/uuid"

	"books-crud-api/internal/domains/book/model"
)

// ServiceInterface - business logic cho Book.
// Không tìm thấy → (nil, nil) hoặc false, không phải error.
type ServiceInterface interface {
	ListAll(ctx context.Context) ([]model.BookResponse, error)
	ListPaginated(ctx context.Context, skip, take int) (model.PaginatedResponse[model.BookResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)
	Create(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
