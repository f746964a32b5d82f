package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field limits của Book entity, dùng chung cho validation và schema.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxAuthorLength      = 100
	MaxISBNLength        = 50
	MaxPublisherLength   = 50
	MaxGenreLength       = 50
	MaxLanguageLength    = 20
	MaxCoverURLLength    = 500

	MinPublicationYear = 1800
	MaxPublicationYear = 2100
	MinPageCount       = 1
	MaxPageCount       = 10000

	PriceScale = 2
)

// MaxPrice là giá tối đa cho phép (inclusive).
var MaxPrice = decimal.NewFromInt(10000)

// Book represents the canonical book entity
type Book struct {
	// Identity
	ID uuid.UUID `json:"id" db:"id"`

	// Content
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Author      string `json:"author" db:"author"`
	ISBN        string `json:"isbn" db:"isbn"`
	Publisher   string `json:"publisher" db:"publisher"`

	// Specs
	PublicationYear int    `json:"publicationYear" db:"publication_year"`
	PageCount       int    `json:"pageCount" db:"page_count"`
	Genre           string `json:"genre" db:"genre"`
	Language        string `json:"language" db:"language"`

	// Pricing & status
	Price       decimal.Decimal `json:"price" db:"price"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`

	// Timestamps (UTC). UpdatedOn nil cho tới lần ghi đầu tiên.
	CreatedOn time.Time  `json:"createdOn" db:"created_on"`
	UpdatedOn *time.Time `json:"updatedOn" db:"updated_on"`

	// Media
	CoverImageURL string `json:"coverImageUrl" db:"cover_image_url"`
}

// Clone trả về bản copy độc lập (UpdatedOn không share pointer).
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	cp := *b
	if b.UpdatedOn != nil {
		t := *b.UpdatedOn
		cp.UpdatedOn = &t
	}
	return &cp
}

// CopyMutableFrom ghi đè tất cả mutable fields (title → cover URL) từ src.
// ID và CreatedOn giữ nguyên.
func (b *Book) CopyMutableFrom(src *Book) {
	b.Title = src.Title
	b.Description = src.Description
	b.Author = src.Author
	b.ISBN = src.ISBN
	b.Publisher = src.Publisher
	b.PublicationYear = src.PublicationYear
	b.PageCount = src.PageCount
	b.Genre = src.Genre
	b.Language = src.Language
	b.Price = src.Price
	b.IsAvailable = src.IsAvailable
	b.CoverImageURL = src.CoverImageURL
}

// NormalizePrice làm tròn giá về 2 chữ số thập phân.
func NormalizePrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(PriceScale)
}
