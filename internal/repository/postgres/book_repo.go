package postgres

import (
	"context"
	"errors"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/gofrs/uuid/v5"
)

// BookRepo implements BookRepository using PostgreSQL.
type BookRepo struct{ db *DB }

// NewBookRepo constructs a book repository.
func NewBookRepo(db *DB) *BookRepo { return &BookRepo{db: db} }

// Create inserts a new book row.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (id, title, author, description, created_by)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, b.ID, b.Title, b.Author, b.Description, b.CreatedBy)
	return err
}

// GetByID selects a book by ID.
func (r *BookRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	const q = `
SELECT id, title, author, description, created_by, created_at
FROM books WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var b model.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CreatedBy, &b.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &b, nil
}

// List selects books matching the filter, newest first. Author is an exact
// match, title a case-insensitive substring; empty values match everything.
func (r *BookRepo) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	const q = `
SELECT id, title, author, description, created_by, created_at
FROM books
WHERE ($1 = '' OR author = $1)
  AND ($2 = '' OR title ILIKE '%' || $2 || '%')
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.db.Pool.Query(ctx, q, f.Author, f.Title, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
