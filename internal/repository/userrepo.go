// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/avolkhin/bookrev/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to user credential records.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists on a taken email.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
