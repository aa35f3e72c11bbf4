package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

const (
	identityCachePrefix = "session"

	msgPasswordWeak     = "Password must be at least 8 characters and include upper and lower case letters, a number and a special character"
	msgPasswordMismatch = "Passwords do not match"
)

// errUnverifiedSession guards state the BFF keeps itself from callers whose
// identity the backend has not confirmed.
var errUnverifiedSession = appErrors.Clone(appErrors.ErrUnauthorized, "session identity could not be confirmed")

// AuthBackend authenticates against the backend and confirms who a token
// belongs to.
type AuthBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, sess *models.Session) (*models.User, error)
}

// AuthService proxies login and registration and turns bearer tokens into sessions.
type AuthService struct {
	backend     AuthBackend
	identities  *CacheService
	identityTTL time.Duration
	validator   *validation.Validator
	parser      *jwt.Parser
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance. identities caches the
// backend-confirmed user per token digest for identityTTL; nil disables it.
func NewAuthService(backend AuthBackend, identities *CacheService, identityTTL time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if identityTTL <= 0 {
		identityTTL = time.Minute
	}
	return &AuthService{
		backend:     backend,
		identities:  identities,
		identityTTL: identityTTL,
		validator:   validation.Default(),
		parser:      jwt.NewParser(),
		logger:      logger,
		now:         time.Now,
	}
}

// Login forwards credentials and returns the backend token and user.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if fields := s.validator.Struct(req); len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid login payload", fields)
	}
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		s.logger.Info("login rejected", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	s.rememberIdentity(ctx, resp)
	s.logger.Info("user logged in", zap.String("username", req.Username))
	return resp, nil
}

// Register checks the form, including the full password policy, before the
// backend is contacted.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	fields := s.validator.Struct(req)
	if fields == nil {
		fields = map[string]string{}
	}
	strength := validation.CheckPassword(req.Password, req.ConfirmPassword)
	if _, exists := fields["password"]; !exists && !passwordRulesMet(strength.Checks) {
		fields["password"] = msgPasswordWeak
	}
	if _, exists := fields["confirmPassword"]; !exists && !strength.Checks.Match {
		fields["confirmPassword"] = msgPasswordMismatch
	}
	if len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid registration payload", fields)
	}

	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.rememberIdentity(ctx, resp)
	s.logger.Info("user registered", zap.String("username", req.Username))
	return resp, nil
}

// PasswordStrength evaluates a password without contacting the backend.
func (s *AuthService) PasswordStrength(password, confirmation string) validation.PasswordStrength {
	return validation.CheckPassword(password, confirmation)
}

// Session builds the request session for a bearer token. A JWT whose exp
// has passed is rejected without a round trip; its other claims are never
// trusted. The caller's identity comes from the backend profile of the token,
// cached by token digest. A token the backend refuses yields ErrSessionExpired.
// When the backend cannot be asked, the session stays authenticated but
// unverified, so calls still reach the backend while local state stays closed.
func (s *AuthService) Session(ctx context.Context, token string) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token")
	}
	claims := &models.TokenClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		claims = nil
	} else if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(s.now()) {
		return nil, appErrors.ErrSessionExpired
	}

	sess := models.NewSession(token, claims)
	user, err := s.identify(ctx, sess)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionExpired) || errors.Is(err, appErrors.ErrUnauthorized) {
			return nil, appErrors.ErrSessionExpired
		}
		s.logger.Warn("session identity unavailable", zap.Error(err))
		return models.NewSession(token, claims), nil
	}
	sess.Verify(*user)
	return sess, nil
}

func (s *AuthService) identify(ctx context.Context, sess *models.Session) (*models.User, error) {
	key := identityCacheKey(sess.Token)
	var cached models.User
	if s.identities.Get(ctx, key, &cached) {
		return &cached, nil
	}
	user, err := s.backend.Profile(ctx, sess)
	if err != nil {
		return nil, err
	}
	if user == nil || (user.ID == "" && user.Username == "") {
		return nil, appErrors.Clone(appErrors.ErrUpstreamDecode, "profile carries no user id")
	}
	s.identities.Set(ctx, key, user, s.identityTTL)
	return user, nil
}

func (s *AuthService) rememberIdentity(ctx context.Context, resp *models.AuthResponse) {
	if resp == nil || resp.Token == "" || (resp.User.ID == "" && resp.User.Username == "") {
		return
	}
	s.identities.Set(ctx, identityCacheKey(resp.Token), resp.User, s.identityTTL)
}

func identityCacheKey(token string) string {
	return identityCachePrefix + ":" + models.TokenDigest(token)
}

func passwordRulesMet(c validation.PasswordChecks) bool {
	return c.Length && c.Uppercase && c.Lowercase && c.Number && c.Special
}
