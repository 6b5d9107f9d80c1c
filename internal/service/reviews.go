package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/avolkhin/bookrev/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// ReviewService defines operations over book reviews.
type ReviewService interface {
	// Create submits a review for a book. One review per (book, user).
	Create(ctx context.Context, userID, bookID uuid.UUID, rating int, comment string) (*model.Review, error)
	// Update rewrites the caller's own review.
	Update(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (*model.Review, error)
	// Delete removes the caller's own review.
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
	// ListByBook returns all reviews for a book.
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Review, error)
}

type ReviewServiceImpl struct {
	reviews repository.ReviewRepository
	books   repository.BookRepository
}

// NewReviewService constructs ReviewService.
func NewReviewService(reviews repository.ReviewRepository, books repository.BookRepository) *ReviewServiceImpl {
	return &ReviewServiceImpl{reviews: reviews, books: books}
}

// Create validates rating and book existence, then inserts. The unique
// (book_id, user_id) index guards against duplicate reviews under
// concurrent identical requests.
func (s *ReviewServiceImpl) Create(ctx context.Context, userID, bookID uuid.UUID, rating int, comment string) (*model.Review, error) {
	if userID == uuid.Nil || bookID == uuid.Nil {
		return nil, errors.New("validation: empty userID/bookID")
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("validation: rating %d out of range 1..5", rating)
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rv := &model.Review{
		ID:      id,
		BookID:  bookID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Update loads the review and requires the caller to own it before
// rewriting rating and comment.
func (s *ReviewServiceImpl) Update(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (*model.Review, error) {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return nil, errors.New("validation: empty userID/reviewID")
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("validation: rating %d out of range 1..5", rating)
	}
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.UserID != userID {
		return nil, errs.ErrForbidden
	}
	rv.Rating = rating
	rv.Comment = comment
	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Delete removes the caller's own review; foreign reviews are forbidden.
func (s *ReviewServiceImpl) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return errors.New("validation: empty userID/reviewID")
	}
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.UserID != userID {
		return errs.ErrForbidden
	}
	return s.reviews.Delete(ctx, reviewID)
}

// ListByBook fetches all reviews for a book.
func (s *ReviewServiceImpl) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Review, error) {
	if bookID == uuid.Nil {
		return nil, errors.New("validation: empty bookID")
	}
	return s.reviews.ListByBook(ctx, bookID)
}
