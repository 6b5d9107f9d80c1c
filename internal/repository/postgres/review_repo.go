package postgres

import (
	"context"
	"errors"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ReviewRepo implements ReviewRepository using PostgreSQL.
type ReviewRepo struct{ db *DB }

// NewReviewRepo constructs a review repository.
func NewReviewRepo(db *DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a new review row. The unique index on (book_id, user_id)
// enforces one review per user per book.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = `
INSERT INTO reviews (id, book_id, user_id, rating, comment)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a review by ID.
func (r *ReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	const q = `
SELECT id, book_id, user_id, rating, comment, created_at, updated_at
FROM reviews WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var rv model.Review
	if err := row.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &rv, nil
}

// Update rewrites rating and comment of an existing review.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	const q = `
UPDATE reviews
SET rating=$2, comment=$3, updated_at=now()
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, rv.ID, rv.Rating, rv.Comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a review row.
func (r *ReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM reviews WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByBook selects all reviews for a book, newest first.
func (r *ReviewRepo) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Review, error) {
	const q = `
SELECT id, book_id, user_id, rating, comment, created_at, updated_at
FROM reviews WHERE book_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
