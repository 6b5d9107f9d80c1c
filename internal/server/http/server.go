// Package httpserver exposes the book-review REST API.
package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avolkhin/bookrev/internal/model"
	"github.com/avolkhin/bookrev/internal/repository"
	"github.com/avolkhin/bookrev/internal/service"
	"github.com/avolkhin/bookrev/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	books   service.BookService
	reviews service.ReviewService
	users   repository.UserRepository
	tokens  *token.Manager
	log     *zap.Logger
}

// New constructs a Server with injected services.
func New(auth service.AuthService, books service.BookService, reviews service.ReviewService,
	users repository.UserRepository, tokens *token.Manager, log *zap.Logger) *Server {
	return &Server{auth: auth, books: books, reviews: reviews, users: users, tokens: tokens, log: log}
}

// Router builds the gin engine with middleware and all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recover(s.log), RequestLogger(s.log))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", s.signup)
		auth.POST("/login", s.login)
		auth.POST("/refresh-token", s.refresh)
	}

	r.GET("/books", s.listBooks)
	r.GET("/books/:id", s.getBook)
	r.GET("/books/:id/reviews", s.listReviews)

	protected := r.Group("/", AuthRequired(s.tokens))
	{
		protected.POST("/books", s.createBook)
		protected.POST("/books/:id/reviews", s.createReview)
		protected.PUT("/reviews/:id", s.updateReview)
		protected.DELETE("/reviews/:id", s.deleteReview)
	}

	return r
}

// currentUser resolves the authenticated email claim to a user record.
func (s *Server) currentUser(c *gin.Context) (*model.User, bool) {
	email, ok := EmailFromCtx(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing credential"})
		return nil, false
	}
	u, err := s.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return nil, false
	}
	return u, true
}

// internalError logs the cause and replies with a generic 500.
func (s *Server) internalError(c *gin.Context, action string, err error) {
	s.log.Error(action, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
