package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fleet-monitor/simulator/internal/backend"
	transporthttp "fleet-monitor/simulator/internal/transport/http"
)

var ErrAuth = errors.New("authentication failed")

type Credentials struct {
	Username string
	Password string
}

// Session is the bearer credential of one run. It is never persisted.
type Session struct {
	Token    string
	Username string
	Role     string

	// Read from the token's claims when it is a JWT. The token is still
	// treated as opaque: nothing is verified locally.
	Subject   string
	ExpiresAt time.Time
}

// Login exchanges credentials for a session. Every failure is wrapped in
// ErrAuth.
func Login(ctx context.Context, c *backend.Client, creds Credentials) (*Session, error) {
	resp, err := c.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	s := &Session{
		Token:    resp.Token,
		Username: creds.Username,
		Role:     resp.Role,
	}
	s.readClaims()
	return s, nil
}

func (s *Session) readClaims() {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return
	}
	if sub, err := claims.GetSubject(); err == nil {
		s.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without an exp claim never expire locally.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Client returns a backend client whose requests carry the session token.
func (s *Session) Client(baseURL string, base *http.Client) *backend.Client {
	return backend.NewClient(baseURL, transporthttp.Wrap(base, s.Token))
}
