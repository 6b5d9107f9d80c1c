package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avolkhin/bookrev/internal/crypto"
	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/limiter"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/avolkhin/bookrev/internal/repository"
	"github.com/avolkhin/bookrev/internal/token"
	"github.com/gofrs/uuid/v5"
)

type fakeUsers struct {
	byEmail map[string]*model.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.User{}
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	f.byEmail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := crypto.HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return h
}

func newAuth(users *fakeUsers, lim limiter.Limiter) *AuthServiceImpl {
	tm := token.NewManager([]byte("test-secret"), time.Minute, 7*24*time.Hour)
	return NewAuthService(users, tm, lim)
}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byEmail: map[string]*model.User{}}
	s := newAuth(users, &fakeLimiter{})

	if _, err := s.Register(context.Background(), "", ""); err == nil {
		t.Fatalf("want validation error on empty email/password")
	}
	if _, err := s.Register(context.Background(), "not-an-email", "p"); err == nil {
		t.Fatalf("want validation error on malformed email")
	}

	id, err := s.Register(context.Background(), "a@x.com", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == "" {
		t.Fatalf("empty user id")
	}

	if _, err := s.Register(context.Background(), "a@x.com", "p2"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate email, got %v", err)
	}

	users.createErr = errors.New("boom")
	if _, err := s.Register(context.Background(), "b@x.com", "p"); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestAuth_LoginWithIP_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	u := &model.User{
		ID:      uuid.Must(uuid.NewV4()),
		Email:   "alice@x.com",
		PwdHash: mustHash(t, "correct"),
	}
	users := &fakeUsers{byEmail: map[string]*model.User{"alice@x.com": u}}
	lim := &fakeLimiter{allowOK: true}
	s := newAuth(users, lim)

	lim.allowErr = errors.New("lim-err")
	if _, _, err := s.LoginWithIP(context.Background(), "alice@x.com", "correct", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, _, err := s.LoginWithIP(context.Background(), "alice@x.com", "correct", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	if _, _, err := s.LoginWithIP(context.Background(), "nope@x.com", "x", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail on unknown email, got %v", err)
	}

	lim.failBlocked = true
	if _, _, err := s.LoginWithIP(context.Background(), "alice@x.com", "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}

	lim.failBlocked = false
	if _, _, err := s.LoginWithIP(context.Background(), "alice@x.com", "wrong", ""); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword on wrong password, got %v", err)
	}

	tok, gotUser, err := s.LoginWithIP(context.Background(), "alice@x.com", "correct", "127.0.0.1:123")
	if err != nil {
		t.Fatalf("LoginWithIP success: %v", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		t.Fatalf("missing tokens: %+v", tok)
	}
	if tok.ExpiresAt.Before(time.Now()) {
		t.Fatalf("access token already expired: %v", tok.ExpiresAt)
	}
	if gotUser.ID != u.ID {
		t.Fatalf("bad user returned: %+v", gotUser)
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func TestAuth_LoginWithIP_FailuresIssueNoTokens(t *testing.T) {
	t.Parallel()

	u := &model.User{
		ID:      uuid.Must(uuid.NewV4()),
		Email:   "bob@x.com",
		PwdHash: mustHash(t, "p"),
	}
	users := &fakeUsers{byEmail: map[string]*model.User{"bob@x.com": u}}
	s := newAuth(users, &fakeLimiter{allowOK: true})

	tok, _, err := s.LoginWithIP(context.Background(), "bob@x.com", "wrong", "")
	if err == nil {
		t.Fatalf("want login failure")
	}
	if tok.AccessToken != "" || tok.RefreshToken != "" {
		t.Fatalf("failed login must not issue tokens: %+v", tok)
	}
}

func TestAuth_Refresh(t *testing.T) {
	t.Parallel()

	u := &model.User{
		ID:      uuid.Must(uuid.NewV4()),
		Email:   "carol@x.com",
		PwdHash: mustHash(t, "p"),
	}
	users := &fakeUsers{byEmail: map[string]*model.User{"carol@x.com": u}}
	s := newAuth(users, &fakeLimiter{allowOK: true})

	tok, _, err := s.LoginWithIP(context.Background(), "carol@x.com", "p", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fresh, err := s.Refresh(context.Background(), tok.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Fatalf("empty access token from refresh")
	}
	// identity claim must survive the round trip
	tm := token.NewManager([]byte("test-secret"), time.Minute, 0)
	email, err := tm.Verify(fresh.AccessToken)
	if err != nil || email != "carol@x.com" {
		t.Fatalf("claim mismatch: %q err=%v", email, err)
	}

	if _, err := s.Refresh(context.Background(), "tampered.token.here"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on tampered token, got %v", err)
	}

	// expired refresh token
	expired := token.NewManager([]byte("test-secret"), time.Minute, -time.Second)
	rt, _, err := expired.IssueRefresh("carol@x.com")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := s.Refresh(context.Background(), rt); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on expired token, got %v", err)
	}
}
