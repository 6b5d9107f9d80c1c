// Package service contains application services for authentication, books and reviews.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avolkhin/bookrev/internal/crypto"
	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/limiter"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/avolkhin/bookrev/internal/repository"
	"github.com/avolkhin/bookrev/internal/token"
	"github.com/gofrs/uuid/v5"
)

// ErrInvalidEmail and ErrInvalidPassword distinguish the two login failure
// modes surfaced to the client.
var (
	ErrInvalidEmail    = fmt.Errorf("invalid email: %w", errs.ErrUnauthorized)
	ErrInvalidPassword = fmt.Errorf("invalid password: %w", errs.ErrUnauthorized)
)

// AuthService defines signup, login and token refresh operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, email, password string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
	// Refresh exchanges a valid refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *token.Manager
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Manager, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register creates a new user record. The duplicate-email check is the
// storage layer's unique constraint, surfaced as errs.ErrAlreadyExists.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", errors.New("empty email/password")
	}
	if !strings.Contains(email, "@") {
		return "", errors.New("malformed email")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return "", err
	}
	u := &model.User{ID: uid, Email: email, PwdHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (email, ip) and issues
// an access/refresh token pair on success.
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		return model.Tokens{}, model.User{}, ErrInvalidEmail
	}
	if !crypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		return model.Tokens{}, model.User{}, ErrInvalidPassword
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.tokens.IssueAccess(u.Email)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	refresh, _, err := s.tokens.IssueRefresh(u.Email)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, *u, nil
}

// Refresh verifies the refresh token and mints a fresh access token.
// The refresh token itself is not rotated and cannot be revoked early;
// its validity is signature and expiry alone.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	email, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	access, exp, err := s.tokens.IssueAccess(email)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}
