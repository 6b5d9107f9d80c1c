package service

import (
	"context"
	"errors"
	"strings"

	"github.com/avolkhin/bookrev/internal/model"
	"github.com/avolkhin/bookrev/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BookService defines operations over the book catalog.
type BookService interface {
	// Create registers a new book owned by userID.
	Create(ctx context.Context, userID uuid.UUID, title, author, description string) (*model.Book, error)
	// List returns books matching the filter.
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	// Get returns a single book by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

type BookServiceImpl struct {
	repo repository.BookRepository
}

// NewBookService constructs BookService.
func NewBookService(repo repository.BookRepository) *BookServiceImpl {
	return &BookServiceImpl{repo: repo}
}

// Create validates input and inserts a new book.
func (s *BookServiceImpl) Create(ctx context.Context, userID uuid.UUID, title, author, description string) (*model.Book, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return nil, errors.New("validation: empty title/author")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	b := &model.Book{
		ID:          id,
		Title:       title,
		Author:      author,
		Description: description,
		CreatedBy:   userID,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List applies paging defaults and caps before hitting the repository.
func (s *BookServiceImpl) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// Get fetches a single book by id.
func (s *BookServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if id == uuid.Nil {
		return nil, errors.New("validation: empty id")
	}
	return s.repo.GetByID(ctx, id)
}
