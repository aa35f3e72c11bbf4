package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

type authBackendStub struct {
	logins       []models.LoginRequest
	registers    []models.RegisterRequest
	err          error
	profiles     map[string]models.User
	profileErr   error
	profileCalls int
}

func (s *authBackendStub) Profile(_ context.Context, sess *models.Session) (*models.User, error) {
	s.profileCalls++
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	user, ok := s.profiles[sess.Token]
	if !ok {
		sess.Clear()
		return nil, appErrors.ErrSessionExpired
	}
	return &user, nil
}

func (s *authBackendStub) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	s.logins = append(s.logins, req)
	if s.err != nil {
		return nil, s.err
	}
	return &models.AuthResponse{Token: "jwt", User: models.User{ID: "1", Username: req.Username}}, nil
}

func (s *authBackendStub) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	s.registers = append(s.registers, req)
	return &models.AuthResponse{Token: "jwt", User: models.User{ID: "2", Username: req.Username}}, nil
}

func signToken(t *testing.T, claims models.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestAuthServiceLogin(t *testing.T) {
	backend := &authBackendStub{}
	svc := NewAuthService(backend, nil, 0, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: " ", Password: "x"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "username")
	assert.Empty(t, backend.logins)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: " ada ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
	assert.Equal(t, "ada", backend.logins[0].Username)

	backend.err = appErrors.Clone(appErrors.ErrUnauthorized, "Invalid credentials")
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "bad"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRegisterEnforcesPasswordPolicy(t *testing.T) {
	backend := &authBackendStub{}
	svc := NewAuthService(backend, nil, 0, nil)

	req := models.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "weakpass", ConfirmPassword: "other"}
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	fields := appErrors.FromError(err).Fields
	assert.Equal(t, msgPasswordWeak, fields["password"])
	assert.Equal(t, msgPasswordMismatch, fields["confirmPassword"])
	assert.Empty(t, backend.registers)

	req.Password = "Str0ng!Pass"
	req.ConfirmPassword = "Str0ng!Pass"
	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ID("2"), resp.User.ID)
	assert.Len(t, backend.registers, 1)
}

func TestAuthServicePasswordStrength(t *testing.T) {
	svc := NewAuthService(&authBackendStub{}, nil, 0, nil)
	strength := svc.PasswordStrength("Str0ng!Pass", "Str0ng!Pass")
	assert.True(t, strength.Acceptable())
	assert.Equal(t, validation.TierStrong, strength.Tier)
}

func newSessionTestService(backend *authBackendStub) *AuthService {
	cache := NewCacheService(newCacheRepoStub(), nil, time.Minute, nil, true)
	svc := NewAuthService(backend, cache, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestAuthServiceSessionConfirmsIdentityWithBackend(t *testing.T) {
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	token := signToken(t, models.TokenClaims{
		UserID:           "999",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	backend := &authBackendStub{profiles: map[string]models.User{
		token:          {ID: "42", Username: "ada", Role: models.RoleAdmin},
		"opaque-token": {ID: "9", Role: models.RoleUser},
	}}
	svc := newSessionTestService(backend)

	sess, err := svc.Session(context.Background(), "  "+token)
	require.NoError(t, err)
	assert.True(t, sess.Verified())
	assert.True(t, sess.IsAdmin())
	assert.Equal(t, "42", sess.Key())
	require.NotNil(t, sess.ExpiresAt)

	_, err = svc.Session(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.profileCalls)

	opaque, err := svc.Session(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, "9", opaque.Key())
	assert.False(t, opaque.IsAdmin())

	_, err = svc.Session(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceSessionRejectsExpiredTokenLocally(t *testing.T) {
	backend := &authBackendStub{}
	svc := newSessionTestService(backend)

	expired := signToken(t, models.TokenClaims{
		UserID:           "42",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(svc.now().Add(-time.Minute))},
	})
	_, err := svc.Session(context.Background(), expired)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.Zero(t, backend.profileCalls)
}

func TestAuthServiceSessionIgnoresForgedClaims(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, models.TokenClaims{UserID: "42", Role: models.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	backend := &authBackendStub{profiles: map[string]models.User{}}
	svc := newSessionTestService(backend)

	_, err = svc.Session(context.Background(), forged)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.Equal(t, 1, backend.profileCalls)

	backend.profileErr = appErrors.ErrUpstreamUnavailable
	sess, err := svc.Session(context.Background(), forged)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.False(t, sess.Verified())
	assert.False(t, sess.IsAdmin())
	assert.NotEqual(t, "42", sess.Key())
	assert.Contains(t, sess.Key(), "token:")
}

func TestAuthServiceLoginPrimesIdentity(t *testing.T) {
	backend := &authBackendStub{profiles: map[string]models.User{}}
	svc := newSessionTestService(backend)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "secret"})
	require.NoError(t, err)

	sess, err := svc.Session(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", sess.Key())
	assert.Zero(t, backend.profileCalls)
}
