package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"books-crud-api/internal/domains/book/model"
)

// BookRepository - data access cho Book.
// Không tìm thấy là giá trị trả về bình thường (nil / false), không phải error.
type BookRepository interface {
	GetAll(ctx context.Context) ([]model.Book, error)
	// GetPaginated trả về tối đa take items sau skip, kèm tổng số bản ghi.
	// skip vượt quá tổng → slice rỗng.
	GetPaginated(ctx context.Context, skip, take int) ([]model.Book, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// Create gán ID mới, CreatedOn = UpdatedOn = now (UTC).
	Create(ctx context.Context, book *model.Book) (*model.Book, error)
	// Update ghi đè toàn bộ mutable fields và set UpdatedOn. Trả về nil nếu id không tồn tại.
	Update(ctx context.Context, id uuid.UUID, book *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Seeder được implement bởi các store hỗ trợ nạp dữ liệu mẫu.
// Chỉ ghi khi store đang rỗng, trả về số bản ghi đã thêm.
type Seeder interface {
	Seed(ctx context.Context, books []model.Book) (int, error)
}

// Clock trả về thời điểm hiện tại; tests inject clock cố định.
type Clock func() time.Time

// UTCNow là Clock mặc định. Làm tròn về microsecond để khớp độ chính xác của timestamptz.
func UTCNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// nextUpdatedOn đảm bảo UpdatedOn không giảm và không nhỏ hơn CreatedOn.
func nextUpdatedOn(now time.Time, current *model.Book) time.Time {
	ts := now
	if ts.Before(current.CreatedOn) {
		ts = current.CreatedOn
	}
	if current.UpdatedOn != nil && ts.Before(*current.UpdatedOn) {
		ts = *current.UpdatedOn
	}
	return ts
}
