package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/upstream"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type analyticsService interface {
	User(ctx context.Context, sess *models.Session, userID models.ID) (*models.UserAnalytics, bool, error)
	SystemHealth(ctx context.Context, sess *models.Session) (*models.SystemHealth, bool, error)
	SystemMetrics(ctx context.Context, sess *models.Session) (*models.SystemMetrics, bool, error)
	APIUsage(ctx context.Context, sess *models.Session) (*models.APIUsage, bool, error)
	PredictionAccuracy(ctx context.Context, sess *models.Session) (*models.PredictionAccuracy, bool, error)
	GenerateReport(ctx context.Context, sess *models.Session, req models.ReportRequest) (*models.Report, error)
	Export(ctx context.Context, sess *models.Session, exportType string) (*upstream.Download, error)
	BFFMetrics() models.BFFMetricsSnapshot
	Invalidate(ctx context.Context) error
}

// AnalyticsHandler exposes cached backend analytics.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// User godoc
// @Summary User activity analytics
// @Description Without an id the current user is reported.
// @Tags Analytics
// @Produce json
// @Param id path string false "User ID"
// @Success 200 {object} response.Envelope
// @Router /api/analytics/user/{id} [get]
func (h *AnalyticsHandler) User(c *gin.Context) {
	data, hit, err := h.analytics.User(c.Request.Context(), sessionOf(c), models.ID(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// SystemHealth godoc
// @Summary Backend component health
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/analytics/system/health [get]
func (h *AnalyticsHandler) SystemHealth(c *gin.Context) {
	data, hit, err := h.analytics.SystemHealth(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// SystemMetrics godoc
// @Summary Backend-wide counters
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/analytics/system/metrics [get]
func (h *AnalyticsHandler) SystemMetrics(c *gin.Context) {
	data, hit, err := h.analytics.SystemMetrics(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// APIUsage godoc
// @Summary Backend endpoint usage
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/analytics/api-usage [get]
func (h *AnalyticsHandler) APIUsage(c *gin.Context) {
	data, hit, err := h.analytics.APIUsage(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// PredictionAccuracy godoc
// @Summary Forecast accuracy
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/analytics/prediction-accuracy [get]
func (h *AnalyticsHandler) PredictionAccuracy(c *gin.Context) {
	data, hit, err := h.analytics.PredictionAccuracy(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// GenerateReport godoc
// @Summary Request an analytics report
// @Tags Analytics
// @Accept json
// @Produce json
// @Param payload body models.ReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /api/analytics/reports [post]
func (h *AnalyticsHandler) GenerateReport(c *gin.Context) {
	var req models.ReportRequest
	if err := bindJSON(c, &req, "report"); err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.analytics.GenerateReport(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusAccepted, report, nil)
}

// Export godoc
// @Summary Download a backend analytics export
// @Tags Analytics
// @Produce octet-stream
// @Param type path string true "Export type"
// @Success 200 {file} file
// @Router /api/analytics/export/{type} [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	download, err := h.analytics.Export(c.Request.Context(), sessionOf(c), c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if download.ContentDisposition != "" {
		c.Header("Content-Disposition", download.ContentDisposition)
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, download.ContentType, download.Data)
		return
	}
	response.Attachment(c, download.ContentType, "analytics-"+c.Param("type"), download.Data)
}

// BFFMetrics godoc
// @Summary Gateway instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/analytics/bff [get]
func (h *AnalyticsHandler) BFFMetrics(c *gin.Context) {
	respondCached(c, h.analytics.BFFMetrics(), false)
}

// Invalidate godoc
// @Summary Drop cached analytics
// @Tags Analytics
// @Success 204
// @Router /api/analytics/cache [delete]
func (h *AnalyticsHandler) Invalidate(c *gin.Context) {
	if err := h.analytics.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate analytics cache"))
		return
	}
	response.NoContent(c)
}
