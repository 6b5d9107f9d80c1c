package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
)

type createBookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Description string `json:"description"`
}

type bookResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   string    `json:"createdAt"`
}

func toBookResponse(b model.Book) bookResponse {
	return bookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) createBook(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and author are required"})
		return
	}
	b, err := s.books.Create(c.Request.Context(), u.ID, req.Title, req.Author, req.Description)
	if err != nil {
		s.internalError(c, "create book", err)
		return
	}
	c.JSON(http.StatusCreated, toBookResponse(*b))
}

func (s *Server) listBooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	f := model.BookFilter{
		Author: c.Query("author"),
		Title:  c.Query("title"),
		Limit:  limit,
		Offset: offset,
	}
	books, err := s.books.List(c.Request.Context(), f)
	if err != nil {
		s.internalError(c, "list books", err)
		return
	}
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"books": out})
}

func (s *Server) getBook(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed book id"})
		return
	}
	b, err := s.books.Get(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toBookResponse(*b))
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
	default:
		s.internalError(c, "get book", err)
	}
}
