package model

import (
	"errors"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"books-crud-api/internal/shared/response"
	"books-crud-api/pkg/logger"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrInvalidBookID      = errors.New("invalid book id")
	ErrInvalidSkip        = errors.New("skip must be a non-negative integer")
	ErrInvalidTake        = errors.New("take must be a positive integer")
	ErrInvalidRequestBody = errors.New("invalid request body")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var bookErrorMap = []struct {
	Err     error
	Write   func(c *gin.Context, message string)
	Message string
	Log     bool
}{
	{ErrBookNotFound, response.NotFound, "The specified book does not exist", false},
	{ErrInvalidBookID, response.BadRequest, "Book id must be a valid UUID", false},
	{ErrInvalidSkip, response.BadRequest, ErrInvalidSkip.Error(), false},
	{ErrInvalidTake, response.BadRequest, ErrInvalidTake.Error(), false},
	{ErrInvalidRequestBody, response.BadRequest, "Request body is not valid JSON", false},
	{ErrStorageUnavailable, response.ServiceUnavailable, "Storage is temporarily unavailable, please retry later", true},
}

// HandleBookError ghi error response tương ứng với err.
// Trả về false nếu err == nil.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if details, ok := ValidationDetails(err); ok {
		response.ValidationError(c, details)
		return true
	}

	for _, e := range bookErrorMap {
		if errors.Is(err, e.Err) {
			if e.Log {
				logger.Error("[BookHandler] "+c.Request.Method+" "+c.FullPath(), err)
			}
			e.Write(c, e.Message)
			return true
		}
	}

	// Lỗi không xác định: không lộ chi tiết ra client
	logger.Error("[BookHandler] unexpected error on "+c.Request.Method+" "+c.FullPath(), err)
	response.InternalServerError(c, "An unexpected error occurred")
	return true
}

// ValidationDetails chuyển ozzo validation.Errors thành map field → message.
func ValidationDetails(err error) (map[string]string, bool) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	details := make(map[string]string, len(verrs))
	for field, fe := range verrs {
		if fe == nil {
			continue
		}
		details[field] = fe.Error()
	}
	return details, true
}
