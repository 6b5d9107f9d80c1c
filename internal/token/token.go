// Package token issues and verifies signed access/refresh tokens.
//
// Both token kinds are HS256 JWTs carrying the user's email as the subject.
// Validity is a pure function of signature and expiry; nothing is stored
// server-side and a token cannot be revoked before it expires.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes. The access token is deliberately short: a stolen one
// is useful for at most a minute, and clients are expected to refresh.
const (
	DefaultAccessTTL  = time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalid covers every verification failure: bad signature, wrong
// signing method, malformed token, or expiry.
var ErrInvalid = errors.New("invalid or expired token")

// Manager signs and verifies tokens with an injected process-wide secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager constructs a Manager. Zero TTLs fall back to the defaults;
// negative TTLs are kept as-is (tests use them to mint expired tokens).
func NewManager(secret []byte, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Manager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessTTL reports the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccess creates a signed access token for email.
func (m *Manager) IssueAccess(email string) (string, time.Time, error) {
	return m.issue(email, m.accessTTL)
}

// IssueRefresh creates a signed refresh token for email.
func (m *Manager) IssueRefresh(email string) (string, time.Time, error) {
	return m.issue(email, m.refreshTTL)
}

func (m *Manager) issue(email string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	return signed, exp, err
}

// Verify checks signature and expiry and returns the embedded email.
// No leeway: a one-minute access token dies at one minute.
func (m *Manager) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrInvalid
	}
	if claims.Subject == "" {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
