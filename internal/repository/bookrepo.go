package repository

import (
	"context"

	"github.com/avolkhin/bookrev/internal/model"
	"github.com/gofrs/uuid/v5"
)

// BookRepository provides CRUD access for books.
type BookRepository interface {
	// Create inserts a new book.
	Create(ctx context.Context, b *model.Book) error
	// GetByID loads a book by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// List returns books matching the filter, newest first.
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
}
