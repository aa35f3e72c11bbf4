package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/logger"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

const (
	// ContextSessionKey is the gin context key storing the request session.
	ContextSessionKey = "session"
	sessionErrorKey   = "session_error"
)

// SessionResolver turns a bearer token into a session, confirming the
// caller's identity with the backend.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*models.Session, error)
}

// Session attaches a session to every request. Requests without a usable
// bearer token get an anonymous session; the reason is kept for RequireSession.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := &models.Session{}
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil && token != "" {
			resolved, resolveErr := resolver.Session(c.Request.Context(), token)
			if resolveErr != nil {
				err = resolveErr
			} else {
				sess = resolved
			}
		}
		if err != nil {
			c.Set(sessionErrorKey, err)
		}
		if sess.Authenticated() {
			c.Set(logger.UserKey, sess.Key())
		}
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// RequireSession rejects requests without an authenticated session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).Authenticated() {
			c.Next()
			return
		}
		if value, ok := c.Get(sessionErrorKey); ok {
			if err, ok := value.(error); ok && errors.Is(err, appErrors.ErrSessionExpired) {
				response.Error(c, err)
				c.Abort()
				return
			}
		}
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
		c.Abort()
	}
}

// RequireVerifiedSession guards routes backed by state the BFF keeps itself.
// The session must carry a backend-confirmed identity.
func RequireVerifiedSession() gin.HandlerFunc {
	require := RequireSession()
	return func(c *gin.Context) {
		if CurrentSession(c).Verified() {
			c.Next()
			return
		}
		if !CurrentSession(c).Authenticated() {
			require(c)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session identity could not be confirmed"))
		c.Abort()
	}
}

// CurrentSession returns the request session, never nil.
func CurrentSession(c *gin.Context) *models.Session {
	if value, ok := c.Get(ContextSessionKey); ok {
		if sess, ok := value.(*models.Session); ok && sess != nil {
			return sess
		}
	}
	return &models.Session{}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
