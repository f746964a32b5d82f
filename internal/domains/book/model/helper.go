package model

import (
	"strings"
)

// ToBookEntity map create request → entity chưa có ID/timestamps.
// isAvailable mặc định true khi không gửi.
func ToBookEntity(req CreateBookRequest) *Book {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	return &Book{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Author:          strings.TrimSpace(req.Author),
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		PageCount:       req.PageCount,
		Genre:           req.Genre,
		Language:        req.Language,
		Price:           NormalizePrice(req.Price),
		IsAvailable:     available,
		CoverImageURL:   req.CoverImageURL,
	}
}

// ApplyUpdate merge các field non-nil của req vào b (in place).
func ApplyUpdate(b *Book, req UpdateBookRequest) {
	if req.Title != nil {
		b.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Author != nil {
		b.Author = strings.TrimSpace(*req.Author)
	}
	if req.ISBN != nil {
		b.ISBN = *req.ISBN
	}
	if req.Publisher != nil {
		b.Publisher = *req.Publisher
	}
	if req.PublicationYear != nil {
		b.PublicationYear = *req.PublicationYear
	}
	if req.PageCount != nil {
		b.PageCount = *req.PageCount
	}
	if req.Genre != nil {
		b.Genre = *req.Genre
	}
	if req.Language != nil {
		b.Language = *req.Language
	}
	if req.Price != nil {
		b.Price = NormalizePrice(*req.Price)
	}
	if req.IsAvailable != nil {
		b.IsAvailable = *req.IsAvailable
	}
	if req.CoverImageURL != nil {
		b.CoverImageURL = *req.CoverImageURL
	}
}

// ToBookResponse - entity → read projection
func ToBookResponse(b *Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		PageCount:       b.PageCount,
		Genre:           b.Genre,
		Language:        b.Language,
		Price:           b.Price,
		IsAvailable:     b.IsAvailable,
		CreatedOn:       b.CreatedOn,
		UpdatedOn:       b.UpdatedOn,
		CoverImageURL:   b.CoverImageURL,
	}
}

func ToBookResponses(books []Book) []BookResponse {
	result := make([]BookResponse, 0, len(books))
	for i := range books {
		result = append(result, ToBookResponse(&books[i]))
	}
	return result
}
