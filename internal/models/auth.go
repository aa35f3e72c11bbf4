package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required"`
	FirstName       *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName        *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// TokenClaims is the subset of the backend JWT the BFF reads. The signature
// is verified by the backend, not here, so the claims only serve the early
// expiry check and never identify the caller.
type TokenClaims struct {
	UserID string   `json:"userId,omitempty"`
	Role   UserRole `json:"role,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Session is the explicit per-request authentication context. It is
// populated from the bearer token and cleared when the backend answers 401.
// User is set only once the backend has confirmed the token.
type Session struct {
	Token     string
	User      *User
	Claims    *TokenClaims
	ExpiresAt *time.Time
	cleared   bool
}

// NewSession builds a session for token.
func NewSession(token string, claims *TokenClaims) *Session {
	s := &Session{Token: token, Claims: claims}
	if claims != nil {
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			s.ExpiresAt = &exp
		}
	}
	return s
}

// Verify binds the backend-confirmed user to the session.
func (s *Session) Verify(user User) {
	if s == nil || s.cleared {
		return
	}
	s.User = &user
}

// Verified reports whether the caller's identity was confirmed by the
// backend. Only verified sessions may reach state the BFF keeps itself.
func (s *Session) Verified() bool {
	return s.Authenticated() && s.User != nil && (s.User.ID != "" || s.User.Username != "")
}

// Authenticated reports whether the session still holds a token.
func (s *Session) Authenticated() bool {
	return s != nil && !s.cleared && s.Token != ""
}

// Clear drops credentials; subsequent calls through this session are unauthenticated.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Token = ""
	s.User = nil
	s.Claims = nil
	s.ExpiresAt = nil
	s.cleared = true
}

// Cleared reports whether Clear was called, i.e. the client must log in again.
func (s *Session) Cleared() bool {
	return s != nil && s.cleared
}

// IsAdmin reports whether the verified user carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.Verified() && s.User.IsAdmin()
}

// Key identifies the session owner. Verified sessions use the user id;
// unverified ones are keyed by a digest of the whole token so they never
// share state with another caller.
func (s *Session) Key() string {
	switch {
	case s.Verified() && s.User.ID != "":
		return s.User.ID.String()
	case s.Verified():
		return s.User.Username
	case s.Authenticated():
		return "token:" + TokenDigest(s.Token)[:32]
	}
	return "anonymous"
}

// TokenDigest is the hex SHA-256 of a bearer token, safe to use in cache keys.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
