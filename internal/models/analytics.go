package models

import "time"

// UserAnalytics summarises one user's activity.
type UserAnalytics struct {
	UserID          ID             `json:"userId"`
	TotalEvents     int            `json:"totalEvents"`
	UpcomingEvents  int            `json:"upcomingEvents"`
	CompletedEvents int            `json:"completedEvents"`
	CancelledEvents int            `json:"cancelledEvents"`
	EventsByType    map[string]int `json:"eventsByType,omitempty"`
	EventsByStatus  map[string]int `json:"eventsByStatus,omitempty"`
	WeatherQueries  int            `json:"weatherQueries"`
	LastActivity    *time.Time     `json:"lastActivity,omitempty"`
}

// SystemHealth reports backend component status.
type SystemHealth struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	CheckedAt  *time.Time        `json:"checkedAt,omitempty"`
}

// SystemMetrics reports backend-wide counters.
type SystemMetrics struct {
	TotalUsers        int     `json:"totalUsers"`
	ActiveUsers       int     `json:"activeUsers"`
	TotalEvents       int     `json:"totalEvents"`
	TotalLocations    int     `json:"totalLocations"`
	RequestsPerMinute float64 `json:"requestsPerMinute"`
	AverageResponseMs float64 `json:"averageResponseMs"`
}

// EndpointUsage is the call volume of one backend endpoint.
type EndpointUsage struct {
	Endpoint      string  `json:"endpoint"`
	Method        string  `json:"method"`
	Count         int64   `json:"count"`
	AvgResponseMs float64 `json:"avgResponseMs"`
	ErrorRate     float64 `json:"errorRate"`
}

// APIUsage aggregates endpoint usage for a period.
type APIUsage struct {
	Period        string          `json:"period,omitempty"`
	TotalRequests int64           `json:"totalRequests"`
	Endpoints     []EndpointUsage `json:"endpoints"`
}

// PredictionAccuracy compares forecasts with observations.
type PredictionAccuracy struct {
	Period          string             `json:"period,omitempty"`
	OverallAccuracy float64            `json:"overallAccuracy"`
	ByMetric        map[string]float64 `json:"byMetric,omitempty"`
	SampleSize      int                `json:"sampleSize"`
}

// ReportRequest asks the backend to generate an analytics report.
type ReportRequest struct {
	ReportType string     `json:"reportType" validate:"required"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Format     string     `json:"format,omitempty" validate:"omitempty,oneof=csv pdf json"`
}

// Report is the backend's generated report descriptor.
type Report struct {
	ID          ID         `json:"id"`
	ReportType  string     `json:"reportType"`
	Status      string     `json:"status"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
}

// BFFMetricsSnapshot summarises this service's own instrumentation.
type BFFMetricsSnapshot struct {
	CacheHitRatio             float64   `json:"cache_hit_ratio"`
	CacheHits                 uint64    `json:"cache_hits"`
	CacheMisses               uint64    `json:"cache_misses"`
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"avg_request_duration_ms"`
	UpstreamCalls             uint64    `json:"upstream_calls"`
	AverageUpstreamDurationMs float64   `json:"avg_upstream_duration_ms"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}
