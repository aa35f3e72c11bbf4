package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

const analyticsPath = "/api/analytics"

// UserAnalytics returns analytics for userID, or for the session user when
// userID is empty.
func (c *Client) UserAnalytics(ctx context.Context, sess *models.Session, userID models.ID) (*models.UserAnalytics, error) {
	path := analyticsPath + "/user"
	if userID != "" {
		path = idPath(path, userID)
	}
	var out models.UserAnalytics
	if err := c.do(ctx, request{name: "analytics.user", method: http.MethodGet, path: path, session: sess, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemHealth returns backend component health.
func (c *Client) SystemHealth(ctx context.Context, sess *models.Session) (*models.SystemHealth, error) {
	var out models.SystemHealth
	if err := c.do(ctx, request{name: "analytics.system_health", method: http.MethodGet, path: analyticsPath + "/system/health", session: sess, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemMetrics returns backend-wide counters.
func (c *Client) SystemMetrics(ctx context.Context, sess *models.Session) (*models.SystemMetrics, error) {
	var out models.SystemMetrics
	if err := c.do(ctx, request{name: "analytics.system_metrics", method: http.MethodGet, path: analyticsPath + "/system/metrics", session: sess, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// APIUsage returns endpoint usage statistics.
func (c *Client) APIUsage(ctx context.Context, sess *models.Session) (*models.APIUsage, error) {
	var out models.APIUsage
	if err := c.do(ctx, request{name: "analytics.api_usage", method: http.MethodGet, path: analyticsPath + "/api-usage", session: sess, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictionAccuracy compares forecasts against observations.
func (c *Client) PredictionAccuracy(ctx context.Context, sess *models.Session) (*models.PredictionAccuracy, error) {
	var out models.PredictionAccuracy
	if err := c.do(ctx, request{name: "analytics.prediction_accuracy", method: http.MethodGet, path: analyticsPath + "/predictions/accuracy", session: sess, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateReport asks the backend to build a report.
func (c *Client) GenerateReport(ctx context.Context, sess *models.Session, req models.ReportRequest) (*models.Report, error) {
	var out models.Report
	if err := c.do(ctx, request{name: "analytics.generate_report", method: http.MethodPost, path: analyticsPath + "/reports/generate", body: req, session: sess, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download is a raw backend file.
type Download struct {
	ContentType        string
	ContentDisposition string
	Data               []byte
}

// ExportAnalytics downloads the backend export of the given type as-is.
func (c *Client) ExportAnalytics(ctx context.Context, sess *models.Session, exportType string) (*Download, error) {
	req := request{
		name:    "analytics.export",
		method:  http.MethodGet,
		path:    analyticsPath + "/export/" + url.PathEscape(exportType),
		session: sess,
		auth:    true,
	}
	data, header, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Download{ContentType: contentType, ContentDisposition: header.Get("Content-Disposition"), Data: data}, nil
}
