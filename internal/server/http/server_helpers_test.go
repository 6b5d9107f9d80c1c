package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	"github.com/avolkhin/bookrev/internal/crypto"
	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/model"
	"github.com/avolkhin/bookrev/internal/service"
	"github.com/avolkhin/bookrev/internal/token"
)

const testSecret = "handler-test-secret"

// In-memory repositories so the handler tests run against the real services.

type memUsers struct{ byEmail map[string]*model.User }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	m.byEmail[u.Email] = &cpy
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

type memBooks struct{ byID map[uuid.UUID]*model.Book }

func (m *memBooks) Create(_ context.Context, b *model.Book) error {
	cpy := *b
	cpy.CreatedAt = time.Now()
	m.byID[b.ID] = &cpy
	return nil
}

func (m *memBooks) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *memBooks) List(_ context.Context, f model.BookFilter) ([]model.Book, error) {
	out := make([]model.Book, 0, len(m.byID))
	for _, b := range m.byID {
		if f.Author != "" && b.Author != f.Author {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

type memReviews struct{ byID map[uuid.UUID]*model.Review }

func (m *memReviews) Create(_ context.Context, rv *model.Review) error {
	for _, existing := range m.byID {
		if existing.BookID == rv.BookID && existing.UserID == rv.UserID {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *rv
	cpy.CreatedAt = time.Now()
	cpy.UpdatedAt = cpy.CreatedAt
	m.byID[rv.ID] = &cpy
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id uuid.UUID) (*model.Review, error) {
	rv, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *rv
	return &c, nil
}

func (m *memReviews) Update(_ context.Context, rv *model.Review) error {
	cur, ok := m.byID[rv.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Rating = rv.Rating
	cur.Comment = rv.Comment
	cur.UpdatedAt = time.Now()
	return nil
}

func (m *memReviews) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memReviews) ListByBook(_ context.Context, bookID uuid.UUID) ([]model.Review, error) {
	out := make([]model.Review, 0)
	for _, rv := range m.byID {
		if rv.BookID == bookID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

// openLimiter never blocks; limiter behavior has its own tests.
type openLimiter struct{}

func (openLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}
func (openLimiter) Success(context.Context, string, []byte) error { return nil }
func (openLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}

type testEnv struct {
	router  *gin.Engine
	tokens  *token.Manager
	users   *memUsers
	books   *memBooks
	reviews *memReviews
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUsers{byEmail: map[string]*model.User{}}
	books := &memBooks{byID: map[uuid.UUID]*model.Book{}}
	reviews := &memReviews{byID: map[uuid.UUID]*model.Review{}}

	tm := token.NewManager([]byte(testSecret), time.Minute, 7*24*time.Hour)
	authSvc := service.NewAuthService(users, tm, openLimiter{})
	bookSvc := service.NewBookService(books)
	reviewSvc := service.NewReviewService(reviews, books)

	srv := New(authSvc, bookSvc, reviewSvc, users, tm, zaptest.NewLogger(t))
	return &testEnv{router: srv.Router(), tokens: tm, users: users, books: books, reviews: reviews}
}

// signupUser seeds a user and returns its ID and a valid access token.
func (e *testEnv) signupUser(t *testing.T, email, password string) (uuid.UUID, string) {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &model.User{ID: uuid.Must(uuid.NewV4()), Email: email, PwdHash: hash}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	access, _, err := e.tokens.IssueAccess(email)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return u.ID, access
}
