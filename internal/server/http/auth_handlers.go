package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkhin/bookrev/internal/errs"
	"github.com/avolkhin/bookrev/internal/service"
)

const refreshCookie = "refreshToken"

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	id, err := s.auth.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"id": id})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
	default:
		s.internalError(c, "signup", err)
	}
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	tok, _, err := s.auth.LoginWithIP(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	switch {
	case err == nil:
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(refreshCookie, tok.RefreshToken, int(s.tokens.RefreshTTL().Seconds()), "/auth", "", false, true)
		c.JSON(http.StatusOK, gin.H{"accessToken": tok.AccessToken})
	case errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
	case errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts"})
	default:
		s.internalError(c, "login", err)
	}
}

// refresh mints a new access token from the refresh cookie. A missing cookie
// is 401, a present but invalid or expired one is 403.
func (s *Server) refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing refresh token"})
		return
	}
	tok, err := s.auth.Refresh(c.Request.Context(), raw)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"accessToken": tok.AccessToken})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired refresh token"})
	default:
		s.internalError(c, "refresh", err)
	}
}
