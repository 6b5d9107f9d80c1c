// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access/refresh tokens.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User represents an account. The password hash embeds its own salt.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique, case-sensitive as stored
	PwdHash   string    // argon2id, self-describing encoded form
	CreatedAt time.Time
}

// Book is a reviewable title.
type Book struct {
	ID          uuid.UUID
	Title       string
	Author      string
	Description string
	CreatedBy   uuid.UUID // FK -> users.id
	CreatedAt   time.Time
}

// BookFilter narrows and pages a book listing.
type BookFilter struct {
	Author string // exact match, empty = any
	Title  string // substring match, empty = any
	Limit  int
	Offset int
}

// Review is a single user's rating of a book. At most one per (book, user).
type Review struct {
	ID        uuid.UUID
	BookID    uuid.UUID // FK -> books.id
	UserID    uuid.UUID // FK -> users.id
	Rating    int       // 1..5
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
