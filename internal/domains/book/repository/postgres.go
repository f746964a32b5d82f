package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"books-crud-api/internal/domains/book/model"
	"books-crud-api/internal/infrastructure/database"
	pkgdb "books-crud-api/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

const bookColumns = `id, title, description, author, isbn, publisher, publication_year, page_count,
	genre, language, price, is_available, created_on, updated_on, cover_image_url`

// PostgresRepository - raw SQL với pgxpool.
// Mỗi operation chạy trong RetryPolicy: transient error được retry với backoff,
// mỗi attempt bị giới hạn bởi command timeout.
type PostgresRepository struct {
	pool      *pgxpool.Pool
	policy    database.RetryPolicy
	batchSize int
	now       Clock
}

var (
	_ BookRepository = (*PostgresRepository)(nil)
	_ Seeder         = (*PostgresRepository)(nil)
)

// NewPostgresRepository - Constructor. clock nil → UTCNow.
func NewPostgresRepository(pool *pgxpool.Pool, policy database.RetryPolicy, batchSize int, clock Clock) *PostgresRepository {
	if clock == nil {
		clock = UTCNow
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PostgresRepository{
		pool:      pool,
		policy:    policy,
		batchSize: batchSize,
		now:       clock,
	}
}

// EnsureSchema tạo bảng books nếu chưa có. Không phải migration tool.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	err := r.policy.Do(ctx, "ensure schema", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, schemaSQL)
		return err
	})
	if err != nil {
		return storageError("ensure schema", err)
	}
	return nil
}

// ========================= READ =====================

func (r *PostgresRepository) GetAll(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_on, id`

	books, err := database.WithRetry(ctx, r.policy, "list books", func(ctx context.Context) ([]model.Book, error) {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		return collectBooks(rows)
	})
	if err != nil {
		return nil, storageError("list books", err)
	}
	return books, nil
}

type bookPage struct {
	books []model.Book
	total int
}

func (r *PostgresRepository) GetPaginated(ctx context.Context, skip, take int) ([]model.Book, int, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_on, id OFFSET $1 LIMIT $2`

	page, err := database.WithRetry(ctx, r.policy, "list books page", func(ctx context.Context) (bookPage, error) {
		var total int
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
			return bookPage{}, err
		}
		if skip >= total {
			return bookPage{books: []model.Book{}, total: total}, nil
		}

		rows, err := r.pool.Query(ctx, query, skip, take)
		if err != nil {
			return bookPage{}, err
		}
		books, err := collectBooks(rows)
		if err != nil {
			return bookPage{}, err
		}
		return bookPage{books: books, total: total}, nil
	})
	if err != nil {
		return nil, 0, storageError("list books page", err)
	}
	return page.books, page.total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := database.WithRetry(ctx, r.policy, "get book", func(ctx context.Context) (*model.Book, error) {
		rows, err := r.pool.Query(ctx, query, id)
		if err != nil {
			return nil, err
		}
		return collectOptionalBook(rows)
	})
	if err != nil {
		return nil, storageError("get book", err)
	}
	return book, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := database.WithRetry(ctx, r.policy, "book exists", func(ctx context.Context) (bool, error) {
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
		return exists, err
	})
	if err != nil {
		return false, storageError("book exists", err)
	}
	return exists, nil
}

// ========================= WRITE =====================

func (r *PostgresRepository) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + bookColumns

	// ID sinh một lần ngoài retry loop để attempt sau không tạo bản ghi thứ hai
	id := uuid.New()
	now := r.now()

	created, err := database.WithWriteRetry(ctx, r.policy, "create book", func(ctx context.Context) (*model.Book, error) {
		rows, err := r.pool.Query(ctx, query,
			id, book.Title, book.Description, book.Author, book.ISBN, book.Publisher,
			book.PublicationYear, book.PageCount, book.Genre, book.Language,
			book.Price, book.IsAvailable, now, now, book.CoverImageURL,
		)
		if err != nil {
			return nil, err
		}
		return collectOptionalBook(rows)
	})
	if err != nil {
		return nil, storageError("create book", err)
	}
	return created, nil
}

// Update khoá row (SELECT FOR UPDATE) rồi ghi đè toàn bộ mutable fields trong một transaction.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, book *model.Book) (*model.Book, error) {
	query := `
		UPDATE books SET
			title = $2, description = $3, author = $4, isbn = $5, publisher = $6,
			publication_year = $7, page_count = $8, genre = $9, language = $10,
			price = $11, is_available = $12, cover_image_url = $13, updated_on = $14
		WHERE id = $1
		RETURNING ` + bookColumns

	updated, err := database.WithRetry(ctx, r.policy, "update book", func(ctx context.Context) (*model.Book, error) {
		return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
			var current model.Book
			err := tx.QueryRow(ctx, `SELECT created_on, updated_on FROM books WHERE id = $1 FOR UPDATE`, id).
				Scan(&current.CreatedOn, &current.UpdatedOn)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}

			ts := nextUpdatedOn(r.now(), &current)
			rows, err := tx.Query(ctx, query,
				id, book.Title, book.Description, book.Author, book.ISBN, book.Publisher,
				book.PublicationYear, book.PageCount, book.Genre, book.Language,
				book.Price, book.IsAvailable, book.CoverImageURL, ts,
			)
			if err != nil {
				return nil, err
			}
			return collectOptionalBook(rows)
		})
	})
	if err != nil {
		return nil, storageError("update book", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := database.WithWriteRetry(ctx, r.policy, "delete book", func(ctx context.Context) (bool, error) {
		tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() > 0, nil
	})
	if err != nil {
		return false, storageError("delete book", err)
	}
	return deleted, nil
}

// Seed ghi books theo từng batch (batchSize câu INSERT mỗi round trip), chỉ khi bảng rỗng.
// ON CONFLICT DO NOTHING để batch được retry an toàn.
func (r *PostgresRepository) Seed(ctx context.Context, books []model.Book) (int, error) {
	exists, err := database.WithRetry(ctx, r.policy, "seed check", func(ctx context.Context) (bool, error) {
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books)`).Scan(&exists)
		return exists, err
	})
	if err != nil {
		return 0, storageError("seed check", err)
	}
	if exists {
		return 0, nil
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING`

	inserted := 0
	for start := 0; start < len(books); start += r.batchSize {
		end := min(start+r.batchSize, len(books))
		chunk := books[start:end]

		n, err := database.WithRetry(ctx, r.policy, "seed batch", func(ctx context.Context) (int, error) {
			batch := &pgx.Batch{}
			for i := range chunk {
				b := &chunk[i]
				batch.Queue(query,
					b.ID, b.Title, b.Description, b.Author, b.ISBN, b.Publisher,
					b.PublicationYear, b.PageCount, b.Genre, b.Language,
					b.Price, b.IsAvailable, b.CreatedOn, b.UpdatedOn, b.CoverImageURL,
				)
			}

			br := r.pool.SendBatch(ctx, batch)
			defer br.Close()

			count := 0
			for range chunk {
				tag, err := br.Exec()
				if err != nil {
					return 0, err
				}
				count += int(tag.RowsAffected())
			}
			return count, nil
		})
		if err != nil {
			return inserted, storageError("seed batch", err)
		}
		inserted += n
	}

	log.Info().Int("inserted", inserted).Int("batch_size", r.batchSize).Msg("[BookRepository] seeded books table")
	return inserted, nil
}

// ========================= HELPERS =====================

func collectBooks(rows pgx.Rows) ([]model.Book, error) {
	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, err
	}
	for i := range books {
		normalizeTimes(&books[i])
	}
	return books, nil
}

// collectOptionalBook trả về nil (không lỗi) khi query không có row.
func collectOptionalBook(rows pgx.Rows) (*model.Book, error) {
	book, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Book])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalizeTimes(book)
	return book, nil
}

// timestamptz được scan theo local timezone, entity luôn giữ UTC.
func normalizeTimes(b *model.Book) {
	b.CreatedOn = b.CreatedOn.UTC()
	if b.UpdatedOn != nil {
		t := b.UpdatedOn.UTC()
		b.UpdatedOn = &t
	}
}

// storageError gắn ErrStorageUnavailable khi đã hết lượt retry cho transient error.
func storageError(op string, err error) error {
	if errors.Is(err, database.ErrRetriesExhausted) {
		return fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
