package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ REQUEST DTOs ============

// CreateBookRequest - POST /books body.
// IsAvailable là pointer để phân biệt "không gửi" (default true) với false.
type CreateBookRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn"`
	Publisher       string          `json:"publisher"`
	PublicationYear int             `json:"publicationYear"`
	PageCount       int             `json:"pageCount"`
	Genre           string          `json:"genre"`
	Language        string          `json:"language"`
	Price           decimal.Decimal `json:"price"`
	IsAvailable     *bool           `json:"isAvailable"`
	CoverImageURL   string          `json:"coverImageUrl"`
}

// UpdateBookRequest - PUT /books/:id body (partial patch).
// nil = field không được gửi → giữ nguyên giá trị hiện tại.
type UpdateBookRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Author          *string          `json:"author"`
	ISBN            *string          `json:"isbn"`
	Publisher       *string          `json:"publisher"`
	PublicationYear *int             `json:"publicationYear"`
	PageCount       *int             `json:"pageCount"`
	Genre           *string          `json:"genre"`
	Language        *string          `json:"language"`
	Price           *decimal.Decimal `json:"price"`
	IsAvailable     *bool            `json:"isAvailable"`
	CoverImageURL   *string          `json:"coverImageUrl"`
}

// ListBooksRequest - Query parameters của GET /books
type ListBooksRequest struct {
	Skip int
	Take int
	All  bool
}

const (
	DefaultSkip = 0
	DefaultTake = 10
)

// ============ RESPONSE DTOs ============

// BookResponse - full read projection của Book
type BookResponse struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn"`
	Publisher       string          `json:"publisher"`
	PublicationYear int             `json:"publicationYear"`
	PageCount       int             `json:"pageCount"`
	Genre           string          `json:"genre"`
	Language        string          `json:"language"`
	Price           decimal.Decimal `json:"price"`
	IsAvailable     bool            `json:"isAvailable"`
	CreatedOn       time.Time       `json:"createdOn"`
	UpdatedOn       *time.Time      `json:"updatedOn"`
	CoverImageURL   string          `json:"coverImageUrl"`
}

// PaginatedResponse - envelope cho một trang kết quả
type PaginatedResponse[T any] struct {
	Data            []T  `json:"data"`
	TotalCount      int  `json:"totalCount"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPaginatedResponse build envelope từ vị trí skip/take.
// take phải > 0 (đã validate ở handler).
func NewPaginatedResponse[T any](items []T, totalCount, skip, take int) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	return NewPage(items, totalCount, skip/take+1, take)
}

// NewPage build envelope từ page number (bắt đầu từ 1).
func NewPage[T any](items []T, totalCount, pageNumber, pageSize int) PaginatedResponse[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return PaginatedResponse[T]{
		Data:            items,
		TotalCount:      totalCount,
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < totalPages,
	}
}
