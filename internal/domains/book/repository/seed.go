package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"books-crud-api/internal/domains/book/model"
)

// SampleBooks - dữ liệu mẫu cho môi trường dev. Timestamps lùi 30/25/20 ngày so với now.
func SampleBooks(now time.Time) []model.Book {
	at := func(daysAgo int) (time.Time, *time.Time) {
		t := now.AddDate(0, 0, -daysAgo)
		u := t
		return t, &u
	}

	gatsbyCreated, gatsbyUpdated := at(30)
	mockingbirdCreated, mockingbirdUpdated := at(25)
	orwellCreated, orwellUpdated := at(20)

	return []model.Book{
		{
			ID:              uuid.New(),
			Title:           "The Great Gatsby",
			Description:     "A story of the fabulously wealthy Jay Gatsby and his love for the beautiful Daisy Buchanan.",
			Author:          "F. Scott Fitzgerald",
			ISBN:            "978-0743273565",
			Publisher:       "Scribner",
			PublicationYear: 1925,
			PageCount:       180,
			Genre:           "Fiction",
			Language:        "English",
			Price:           decimal.RequireFromString("12.99"),
			IsAvailable:     true,
			CreatedOn:       gatsbyCreated,
			UpdatedOn:       gatsbyUpdated,
			CoverImageURL:   "https://example.com/gatsby-cover.jpg",
		},
		{
			ID:              uuid.New(),
			Title:           "To Kill a Mockingbird",
			Description:     "The story of young Scout Finch and her father Atticus in a racially divided Alabama town.",
			Author:          "Harper Lee",
			ISBN:            "978-0446310789",
			Publisher:       "Grand Central Publishing",
			PublicationYear: 1960,
			PageCount:       281,
			Genre:           "Fiction",
			Language:        "English",
			Price:           decimal.RequireFromString("14.99"),
			IsAvailable:     true,
			CreatedOn:       mockingbirdCreated,
			UpdatedOn:       mockingbirdUpdated,
			CoverImageURL:   "https://example.com/mockingbird-cover.jpg",
		},
		{
			ID:              uuid.New(),
			Title:           "1984",
			Description:     "A dystopian novel about totalitarianism and surveillance society.",
			Author:          "George Orwell",
			ISBN:            "978-0451524935",
			Publisher:       "Signet",
			PublicationYear: 1949,
			PageCount:       328,
			Genre:           "Science Fiction",
			Language:        "English",
			Price:           decimal.RequireFromString("11.99"),
			IsAvailable:     true,
			CreatedOn:       orwellCreated,
			UpdatedOn:       orwellUpdated,
			CoverImageURL:   "https://example.com/1984-cover.jpg",
		},
	}
}
