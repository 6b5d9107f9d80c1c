package repository

import (
	"context"

	"github.com/avolkhin/bookrev/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ReviewRepository provides CRUD access for reviews.
type ReviewRepository interface {
	// Create inserts a new review. Returns errs.ErrAlreadyExists when the
	// user already reviewed the book.
	Create(ctx context.Context, r *model.Review) error
	// GetByID loads a review by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	// Update rewrites rating and comment of an existing review.
	Update(ctx context.Context, r *model.Review) error
	// Delete removes a review by ID.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByBook returns all reviews for a book, newest first.
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Review, error)
}
