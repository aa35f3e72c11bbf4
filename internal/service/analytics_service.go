package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/upstream"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

const analyticsCachePrefix = "analytics"

// AnalyticsBackend is the subset of the upstream client for analytics.
type AnalyticsBackend interface {
	UserAnalytics(ctx context.Context, sess *models.Session, userID models.ID) (*models.UserAnalytics, error)
	SystemHealth(ctx context.Context, sess *models.Session) (*models.SystemHealth, error)
	SystemMetrics(ctx context.Context, sess *models.Session) (*models.SystemMetrics, error)
	APIUsage(ctx context.Context, sess *models.Session) (*models.APIUsage, error)
	PredictionAccuracy(ctx context.Context, sess *models.Session) (*models.PredictionAccuracy, error)
	GenerateReport(ctx context.Context, sess *models.Session, req models.ReportRequest) (*models.Report, error)
	ExportAnalytics(ctx context.Context, sess *models.Session, exportType string) (*upstream.Download, error)
}

// AnalyticsServiceParams groups AnalyticsService dependencies.
type AnalyticsServiceParams struct {
	Backend  AnalyticsBackend
	Cache    *CacheService
	Metrics  *MetricsService
	CacheTTL time.Duration
	Enabled  bool
	Logger   *zap.Logger
}

// AnalyticsService provides cached access to backend analytics.
type AnalyticsService struct {
	backend   AnalyticsBackend
	cache     *CacheService
	metrics   *MetricsService
	ttl       time.Duration
	enabled   bool
	validator *validation.Validator
	logger    *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(params AnalyticsServiceParams) *AnalyticsService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &AnalyticsService{
		backend:   params.Backend,
		cache:     params.Cache,
		metrics:   params.Metrics,
		ttl:       params.CacheTTL,
		enabled:   params.Enabled,
		validator: validation.Default(),
		logger:    params.Logger,
	}
}

// Enabled reports whether analytics endpoints are served.
func (s *AnalyticsService) Enabled() bool {
	return s != nil && s.enabled
}

// User returns analytics for userID, or for the session user when empty.
// The boolean indicates whether data originated from cache. Cached entries
// are scoped to the verified viewer, so the backend has authorized every
// caller a hit is served to.
func (s *AnalyticsService) User(ctx context.Context, sess *models.Session, userID models.ID) (*models.UserAnalytics, bool, error) {
	if !s.Enabled() {
		return nil, false, appErrors.ErrFeatureDisabled
	}
	return RememberFor(ctx, s.cache, sess, analyticsCacheKey(sess, "user", userID.String()), s.ttl, func(ctx context.Context) (*models.UserAnalytics, error) {
		return s.backend.UserAnalytics(ctx, sess, userID)
	})
}

// SystemHealth returns backend component health.
func (s *AnalyticsService) SystemHealth(ctx context.Context, sess *models.Session) (*models.SystemHealth, bool, error) {
	if !s.Enabled() {
		return nil, false, appErrors.ErrFeatureDisabled
	}
	return RememberFor(ctx, s.cache, sess, analyticsCacheKey(sess, "health"), s.ttl, func(ctx context.Context) (*models.SystemHealth, error) {
		return s.backend.SystemHealth(ctx, sess)
	})
}

// SystemMetrics returns backend-wide counters.
func (s *AnalyticsService) SystemMetrics(ctx context.Context, sess *models.Session) (*models.SystemMetrics, bool, error) {
	if !s.Enabled() {
		return nil, false, appErrors.ErrFeatureDisabled
	}
	return RememberFor(ctx, s.cache, sess, analyticsCacheKey(sess, "system-metrics"), s.ttl, func(ctx context.Context) (*models.SystemMetrics, error) {
		return s.backend.SystemMetrics(ctx, sess)
	})
}

// APIUsage returns backend endpoint usage.
func (s *AnalyticsService) APIUsage(ctx context.Context, sess *models.Session) (*models.APIUsage, bool, error) {
	if !s.Enabled() {
		return nil, false, appErrors.ErrFeatureDisabled
	}
	return RememberFor(ctx, s.cache, sess, analyticsCacheKey(sess, "api-usage"), s.ttl, func(ctx context.Context) (*models.APIUsage, error) {
		return s.backend.APIUsage(ctx, sess)
	})
}

// PredictionAccuracy returns forecast accuracy figures.
func (s *AnalyticsService) PredictionAccuracy(ctx context.Context, sess *models.Session) (*models.PredictionAccuracy, bool, error) {
	if !s.Enabled() {
		return nil, false, appErrors.ErrFeatureDisabled
	}
	return RememberFor(ctx, s.cache, sess, analyticsCacheKey(sess, "prediction-accuracy"), s.ttl, func(ctx context.Context) (*models.PredictionAccuracy, error) {
		return s.backend.PredictionAccuracy(ctx, sess)
	})
}

// GenerateReport validates and forwards a report request. Reports are never cached.
func (s *AnalyticsService) GenerateReport(ctx context.Context, sess *models.Session, req models.ReportRequest) (*models.Report, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrFeatureDisabled
	}
	if fields := s.validator.Struct(req); len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid report request", fields)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid report range", map[string]string{"endDate": validation.MsgEndDateBeforeStart})
	}
	report, err := s.backend.GenerateReport(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("analytics report requested", zap.String("type", req.ReportType), zap.String("user", sess.Key()))
	return report, nil
}

// Export downloads a backend analytics export.
func (s *AnalyticsService) Export(ctx context.Context, sess *models.Session, exportType string) (*upstream.Download, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrFeatureDisabled
	}
	exportType = strings.TrimSpace(exportType)
	if exportType == "" {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "export type required", map[string]string{"type": "type is required"})
	}
	return s.backend.ExportAnalytics(ctx, sess, exportType)
}

// BFFMetrics returns this service's own instrumentation snapshot.
func (s *AnalyticsService) BFFMetrics() models.BFFMetricsSnapshot {
	return s.metrics.Snapshot()
}

// Invalidate drops every cached analytics response.
func (s *AnalyticsService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, analyticsCachePrefix+":*")
}

// analyticsCacheKey namespaces entries by the viewer: analytics:<viewer>:<kind>[:<target>].
func analyticsCacheKey(viewer *models.Session, parts ...string) string {
	var builder strings.Builder
	builder.Grow((len(parts) + 1) * 16)
	builder.WriteString(analyticsCachePrefix)
	for _, part := range append([]string{viewer.Key()}, parts...) {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
