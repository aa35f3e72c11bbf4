package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/service"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type resolverStub struct {
	sessions map[string]*models.Session
}

func (r resolverStub) Session(_ context.Context, token string) (*models.Session, error) {
	if sess, ok := r.sessions[token]; ok {
		return sess, nil
	}
	return nil, appErrors.ErrSessionExpired
}

func newResolver() resolverStub {
	return resolverStub{sessions: map[string]*models.Session{
		"user":        {Token: "user", User: &models.User{ID: "42"}},
		"admin":       {Token: "admin", User: &models.User{ID: "1", Role: models.RoleAdmin}},
		"unconfirmed": models.NewSession("unconfirmed", &models.TokenClaims{UserID: "42", Role: models.RoleAdmin}),
	}}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(newResolver()))
	all := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentSession(c).Key()})
	})
	r.GET("/items/:id", all...)
	return r
}

func perform(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionAttachesAnonymousAndResolved(t *testing.T) {
	r := newRouter()

	rec := perform(r, "/items/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"anonymous"}`, rec.Body.String())

	rec = perform(r, "/items/1", "Bearer user")
	assert.JSONEq(t, `{"user":"42"}`, rec.Body.String())

	rec = perform(r, "/items/1", "Bearer stale")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"anonymous"}`, rec.Body.String())
}

func TestRequireSession(t *testing.T) {
	r := newRouter(RequireSession())

	rec := perform(r, "/items/1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get(response.SessionExpiredHeader))

	rec = perform(r, "/items/1", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(r, "/items/1", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(response.SessionExpiredHeader))
	var body response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrSessionExpired.Code, body.Error.Code)

	rec = perform(r, "/items/1", "bearer user")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(RequireAdmin())

	assert.Equal(t, http.StatusUnauthorized, perform(r, "/items/1", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, "/items/1", "Bearer user").Code)
	assert.Equal(t, http.StatusOK, perform(r, "/items/1", "Bearer admin").Code)
}

func TestRequireVerifiedSession(t *testing.T) {
	r := newRouter(RequireVerifiedSession())

	assert.Equal(t, http.StatusUnauthorized, perform(r, "/items/1", "").Code)
	assert.Equal(t, "true", perform(r, "/items/1", "Bearer stale").Header().Get(response.SessionExpiredHeader))
	assert.Equal(t, http.StatusUnauthorized, perform(r, "/items/1", "Bearer unconfirmed").Code)
	assert.Equal(t, http.StatusOK, perform(r, "/items/1", "Bearer user").Code)
}

func TestUnconfirmedClaimsGrantNoRole(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, perform(newRouter(RequireAdmin()), "/items/1", "Bearer unconfirmed").Code)
	assert.Equal(t, http.StatusForbidden, perform(newRouter(RequireSelfOrAdmin("id")), "/items/42", "Bearer unconfirmed").Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	r := newRouter(RequireSelfOrAdmin("id"))

	assert.Equal(t, http.StatusOK, perform(r, "/items/42", "Bearer user").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, "/items/7", "Bearer user").Code)
	assert.Equal(t, http.StatusOK, perform(r, "/items/7", "Bearer admin").Code)
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(Audit(zap.New(core), "update", "event"))

	perform(r, "/items/9", "Bearer user")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "update", fields["action"])
	assert.Equal(t, "9", fields["resource_id"])
	assert.Equal(t, "42", fields["user"])

	failing := newRouter(Audit(zap.New(core), "update", "event"), RequireAdmin())
	perform(failing, "/items/9", "Bearer user")
	assert.Equal(t, 1, logs.Len())
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SetCacheHit(c, true)
	SetMeta(c, "partial", false)
	meta := ResponseMeta(c)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, false, meta["partial"])
	assert.NotContains(t, meta, "request_id")
}

func TestMetricsMiddlewareToleratesNilService(t *testing.T) {
	r := newRouter(Metrics(nil))
	assert.Equal(t, http.StatusOK, perform(r, "/items/1", "").Code)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	r := newRouter()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, "/things/1", "")
	perform(r, "/things/2", "")
	perform(r, "/health", "")
	perform(r, "/missing", "")

	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `path="/things/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, `path="/health"`)
}
