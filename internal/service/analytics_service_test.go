package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/upstream"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

type analyticsBackendStub struct {
	userCalls    int
	healthCalls  int
	reports      int
	lastExport   string
	lastUserID   models.ID
	healthErr    error
	userAnalytic *models.UserAnalytics
}

func (s *analyticsBackendStub) UserAnalytics(_ context.Context, _ *models.Session, userID models.ID) (*models.UserAnalytics, error) {
	s.userCalls++
	s.lastUserID = userID
	if s.userAnalytic != nil {
		return s.userAnalytic, nil
	}
	return &models.UserAnalytics{UserID: "42", TotalEvents: 7}, nil
}

func (s *analyticsBackendStub) SystemHealth(context.Context, *models.Session) (*models.SystemHealth, error) {
	s.healthCalls++
	if s.healthErr != nil {
		return nil, s.healthErr
	}
	return &models.SystemHealth{Status: "UP"}, nil
}

func (s *analyticsBackendStub) SystemMetrics(context.Context, *models.Session) (*models.SystemMetrics, error) {
	return &models.SystemMetrics{TotalUsers: 3}, nil
}

func (s *analyticsBackendStub) APIUsage(context.Context, *models.Session) (*models.APIUsage, error) {
	return &models.APIUsage{TotalRequests: 10}, nil
}

func (s *analyticsBackendStub) PredictionAccuracy(context.Context, *models.Session) (*models.PredictionAccuracy, error) {
	return &models.PredictionAccuracy{OverallAccuracy: 0.9}, nil
}

func (s *analyticsBackendStub) GenerateReport(_ context.Context, _ *models.Session, req models.ReportRequest) (*models.Report, error) {
	s.reports++
	return &models.Report{ID: "r1", ReportType: req.ReportType, Status: "PENDING"}, nil
}

func (s *analyticsBackendStub) ExportAnalytics(_ context.Context, _ *models.Session, exportType string) (*upstream.Download, error) {
	s.lastExport = exportType
	return &upstream.Download{ContentType: "text/csv", Data: []byte("a,b\n")}, nil
}

func newTestAnalyticsService(backend *analyticsBackendStub, enabled bool) (*AnalyticsService, *cacheRepoStub) {
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	return NewAnalyticsService(AnalyticsServiceParams{
		Backend:  backend,
		Cache:    cache,
		Metrics:  NewMetricsService(),
		CacheTTL: time.Minute,
		Enabled:  enabled,
	}), repo
}

func TestAnalyticsServiceCachesUserAnalyticsPerOwner(t *testing.T) {
	backend := &analyticsBackendStub{}
	svc, repo := newTestAnalyticsService(backend, true)

	first, hit, err := svc.User(context.Background(), testSession(), "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, first.TotalEvents)

	_, hit, err = svc.User(context.Background(), testSession(), "")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, backend.userCalls)
	assert.Contains(t, repo.store, "analytics:42:user")

	_, hit, err = svc.User(context.Background(), testSession(), "7")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.ID("7"), backend.lastUserID)
	assert.Equal(t, 2, backend.userCalls)
}

func TestAnalyticsServiceNeverServesHitsAcrossCallers(t *testing.T) {
	backend := &analyticsBackendStub{}
	svc, repo := newTestAnalyticsService(backend, true)

	_, _, err := svc.User(context.Background(), testSession(), "")
	require.NoError(t, err)
	_, _, err = svc.SystemHealth(context.Background(), testSession())
	require.NoError(t, err)

	unconfirmed := models.NewSession("unconfirmed-token", nil)
	_, hit, err := svc.User(context.Background(), unconfirmed, "42")
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.SystemHealth(context.Background(), &models.Session{Token: "garbage"})
	require.NoError(t, err)
	assert.False(t, hit)

	other := &models.Session{Token: "other", User: &models.User{ID: "7", Role: models.RoleAdmin}}
	_, hit, err = svc.SystemHealth(context.Background(), other)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, 2, backend.userCalls)
	assert.Equal(t, 3, backend.healthCalls)
	assert.Contains(t, repo.store, "analytics:7:health")
	for key := range repo.store {
		assert.NotContains(t, key, "token:")
	}
}

func TestAnalyticsServiceDisabled(t *testing.T) {
	backend := &analyticsBackendStub{}
	svc, _ := newTestAnalyticsService(backend, false)

	_, _, err := svc.User(context.Background(), testSession(), "")
	assert.ErrorIs(t, err, appErrors.ErrFeatureDisabled)
	_, _, err = svc.SystemHealth(context.Background(), testSession())
	assert.ErrorIs(t, err, appErrors.ErrFeatureDisabled)
	_, err = svc.GenerateReport(context.Background(), testSession(), models.ReportRequest{ReportType: "events"})
	assert.ErrorIs(t, err, appErrors.ErrFeatureDisabled)
	_, err = svc.Export(context.Background(), testSession(), "events")
	assert.ErrorIs(t, err, appErrors.ErrFeatureDisabled)
	assert.Zero(t, backend.userCalls+backend.healthCalls+backend.reports)
}

func TestAnalyticsServiceDoesNotCacheFailures(t *testing.T) {
	backend := &analyticsBackendStub{healthErr: appErrors.Clone(appErrors.ErrUpstream, "down")}
	svc, repo := newTestAnalyticsService(backend, true)

	_, _, err := svc.SystemHealth(context.Background(), testSession())
	require.Error(t, err)
	assert.NotContains(t, repo.store, "analytics:42:health")

	backend.healthErr = nil
	health, hit, err := svc.SystemHealth(context.Background(), testSession())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "UP", health.Status)
	assert.Equal(t, 2, backend.healthCalls)
}

func TestAnalyticsServiceGenerateReportValidates(t *testing.T) {
	backend := &analyticsBackendStub{}
	svc, _ := newTestAnalyticsService(backend, true)

	_, err := svc.GenerateReport(context.Background(), testSession(), models.ReportRequest{Format: "xml"})
	require.Error(t, err)
	fields := appErrors.FromError(err).Fields
	assert.Contains(t, fields, "reportType")
	assert.Contains(t, fields, "format")

	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.GenerateReport(context.Background(), testSession(), models.ReportRequest{ReportType: "events", StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, backend.reports)

	report, err := svc.GenerateReport(context.Background(), testSession(), models.ReportRequest{ReportType: "events", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "events", report.ReportType)
}

func TestAnalyticsServiceExportAndInvalidate(t *testing.T) {
	backend := &analyticsBackendStub{}
	svc, repo := newTestAnalyticsService(backend, true)

	_, err := svc.Export(context.Background(), testSession(), "  ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	download, err := svc.Export(context.Background(), testSession(), " events ")
	require.NoError(t, err)
	assert.Equal(t, "events", backend.lastExport)
	assert.Equal(t, "text/csv", download.ContentType)

	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Equal(t, []string{"analytics:*"}, repo.purged)
}

func TestAnalyticsCacheKeyEscapesSeparators(t *testing.T) {
	assert.Equal(t, "analytics:user:a|b", analyticsCacheKey("user", "a:b"))
	assert.Equal(t, "analytics:health", analyticsCacheKey("health", ""))
}
