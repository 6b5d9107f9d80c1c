package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"bookId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

func toReviewResponse(rv model.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		BookID:    rv.BookID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rv.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) createReview(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	bookID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed book id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	rv, err := s.reviews.Create(c.Request.Context(), u.ID, bookID, req.Rating, req.Comment)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, toReviewResponse(*rv))
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this book"})
	default:
		s.internalError(c, "create review", err)
	}
}

func (s *Server) listReviews(c *gin.Context) {
	bookID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed book id"})
		return
	}
	reviews, err := s.reviews.ListByBook(c.Request.Context(), bookID)
	if err != nil {
		s.internalError(c, "list reviews", err)
		return
	}
	out := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewResponse(rv))
	}
	c.JSON(http.StatusOK, gin.H{"reviews": out})
}

func (s *Server) updateReview(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	reviewID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed review id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	rv, err := s.reviews.Update(c.Request.Context(), u.ID, reviewID, req.Rating, req.Comment)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toReviewResponse(*rv))
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your review"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	default:
		s.internalError(c, "update review", err)
	}
}

func (s *Server) deleteReview(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	reviewID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed review id"})
		return
	}
	err = s.reviews.Delete(c.Request.Context(), u.ID, reviewID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your review"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	default:
		s.internalError(c, "delete review", err)
	}
}
