package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"books-crud-api/internal/domains/book/model"
	"books-crud-api/internal/domains/book/service"
	"books-crud-api/internal/shared/response"
	"books-crud-api/pkg/logger"
)

// Handler - HTTP handler cho /books
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListBooks - GET /books
// Query params: skip (>= 0, default 0), take (> 0, default 10), all=true trả về toàn bộ không phân trang.
func (h *Handler) ListBooks(c *gin.Context) {
	req, err := parseListRequest(c)
	if model.HandleBookError(c, err) {
		return
	}

	if req.All {
		books, err := h.service.ListAll(c.Request.Context())
		if model.HandleBookError(c, err) {
			return
		}
		response.Success(c, http.StatusOK, books)
		return
	}

	page, err := h.service.ListPaginated(c.Request.Context(), req.Skip, req.Take)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, page)
}

// GetBook - GET /books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}
	if book == nil {
		model.HandleBookError(c, model.ErrBookNotFound)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// CreateBook - POST /books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("[BookHandler] invalid create body", map[string]interface{}{"error": err.Error()})
		model.HandleBookError(c, model.ErrInvalidRequestBody)
		return
	}

	// Validate trước khi gọi service
	if err := req.Validate(); err != nil {
		model.HandleBookError(c, err)
		return
	}

	book, err := h.service.Create(c.Request.Context(), req)
	if model.HandleBookError(c, err) {
		return
	}
	response.Created(c, strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+book.ID.String(), book)
}

// UpdateBook - PUT /books/:id (partial patch)
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("[BookHandler] invalid update body", map[string]interface{}{"error": err.Error()})
		model.HandleBookError(c, model.ErrInvalidRequestBody)
		return
	}

	if err := req.Validate(); err != nil {
		model.HandleBookError(c, err)
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req)
	if model.HandleBookError(c, err) {
		return
	}
	if book == nil {
		model.HandleBookError(c, model.ErrBookNotFound)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// DeleteBook - DELETE /books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}
	if !deleted {
		model.HandleBookError(c, model.ErrBookNotFound)
		return
	}
	response.NoContent(c)
}

// ============ helpers ============

func parseBookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		model.HandleBookError(c, model.ErrInvalidBookID)
		return uuid.Nil, false
	}
	return id, true
}

func parseListRequest(c *gin.Context) (model.ListBooksRequest, error) {
	req := model.ListBooksRequest{
		Skip: model.DefaultSkip,
		Take: model.DefaultTake,
	}

	if all, err := strconv.ParseBool(c.Query("all")); err == nil {
		req.All = all
	}
	if req.All {
		return req, nil
	}

	if skipStr, ok := c.GetQuery("skip"); ok {
		skip, err := strconv.Atoi(skipStr)
		if err != nil {
			return req, model.ErrInvalidSkip
		}
		req.Skip = skip
	}
	if takeStr, ok := c.GetQuery("take"); ok {
		take, err := strconv.Atoi(takeStr)
		if err != nil {
			return req, model.ErrInvalidTake
		}
		req.Take = take
	}

	return req, model.ValidateListRequest(req)
}
