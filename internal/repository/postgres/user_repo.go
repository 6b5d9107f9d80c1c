package postgres

import (
	"context"
	"errors"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row. The unique index on email is the source of
// truth for duplicates; there is no check-then-insert race.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, email, pwd_hash)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Email, u.PwdHash)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, email, pwd_hash, created_at
FROM users WHERE id=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, pwd_hash, created_at
FROM users WHERE email=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, email))
}

func (r *UserRepo) scanOne(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PwdHash, &u.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}
