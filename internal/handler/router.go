package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts. Nil handlers leave
// their routes unregistered.
type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Events    *EventHandler
	Calendar  *CalendarHandler
	Locations *LocationHandler
	Weather   *WeatherHandler
	Analytics *AnalyticsHandler
	Dashboard *DashboardHandler
	Exports   *ExportHandler
	Metrics   *MetricsHandler
}

// RouterConfig controls route mounting.
type RouterConfig struct {
	APIPrefix string
	Sessions  middleware.SessionResolver
	Logger    *zap.Logger
}

// Register mounts all routes on r. Global middleware (recovery, request id,
// logging, CORS, metrics) is the caller's concern.
func Register(r *gin.Engine, h Handlers, cfg RouterConfig) {
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(cfg.Logger, action, resource)
	}

	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	session := middleware.Session(cfg.Sessions)
	api := r.Group("/api", session, middleware.WithResponseMeta())
	authed := middleware.RequireSession()
	verified := middleware.RequireVerifiedSession()

	if h.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/password-strength", h.Auth.PasswordStrength)
		auth.GET("/session", h.Auth.Session)
	}

	if h.Users != nil {
		users := api.Group("/users", authed)
		users.GET("/profile", h.Users.Profile)
		users.PUT("/profile", audit("update", "profile"), h.Users.UpdateProfile)
		users.GET("/preferences", h.Users.Preferences)
		users.PUT("/preferences", h.Users.UpdatePreferences)
		users.DELETE("/account", audit("delete", "account"), h.Users.DeleteAccount)
	}

	if h.Weather != nil {
		weather := api.Group("/weather")
		weather.GET("/random", h.Weather.Random)
		weather.GET("/current", h.Weather.Current)
		weather.GET("/forecast", h.Weather.Forecast)
		weather.GET("/historical", h.Weather.Historical)
	}

	if h.Analytics != nil {
		analytics := api.Group("/analytics", authed)
		analytics.GET("/user", h.Analytics.User)
		analytics.GET("/user/:id", middleware.RequireSelfOrAdmin("id"), h.Analytics.User)
		analytics.GET("/prediction-accuracy", h.Analytics.PredictionAccuracy)
		analytics.POST("/reports", h.Analytics.GenerateReport)
		analytics.GET("/export/:type", h.Analytics.Export)

		admin := analytics.Group("", middleware.RequireAdmin())
		admin.GET("/system/health", h.Analytics.SystemHealth)
		admin.GET("/system/metrics", h.Analytics.SystemMetrics)
		admin.GET("/api-usage", h.Analytics.APIUsage)
		admin.GET("/bff", h.Analytics.BFFMetrics)
		admin.DELETE("/cache", audit("invalidate", "analytics_cache"), h.Analytics.Invalidate)
	}

	if h.Dashboard != nil {
		api.GET("/dashboard", authed, h.Dashboard.Get)
	}

	v1 := r.Group(prefix, session, middleware.WithResponseMeta())
	if h.Exports != nil {
		v1.GET("/export/:token", h.Exports.Download)
	}
	secured := v1.Group("", authed)

	if h.Events != nil {
		events := secured.Group("/events")
		events.GET("", h.Events.List)
		events.POST("", audit("create", "event"), h.Events.Create)
		events.POST("/validate", h.Events.Validate)
		events.POST("/search", h.Events.Search)
		events.POST("/check-name", h.Events.CheckName)
		events.POST("/check-conflicts", h.Events.CheckConflicts)
		events.GET("/stats", h.Events.Stats)
		events.GET("/upcoming", h.Events.Upcoming)
		events.GET("/buckets", h.Events.Buckets)
		events.GET("/:id", h.Events.Get)
		events.PUT("/:id", audit("update", "event"), h.Events.Update)
		events.DELETE("/:id", audit("delete", "event"), h.Events.Delete)
		if h.Exports != nil {
			events.POST("/exports", verified, audit("create", "event_export"), h.Exports.Create)
			events.GET("/exports/:id", verified, h.Exports.Status)
		}
	}

	if h.Calendar != nil {
		calendar := secured.Group("/calendar")
		calendar.GET("/month", h.Calendar.Month)
		calendar.GET("/week", h.Calendar.Week)
		calendar.GET("/day", h.Calendar.Day)
	}

	if h.Locations != nil {
		locations := secured.Group("/locations")
		locations.GET("", h.Locations.List)
		locations.POST("", audit("create", "location"), h.Locations.Create)
		locations.POST("/validate", h.Locations.Validate)
		locations.GET("/search", h.Locations.Search)
		locations.GET("/search-history", verified, h.Locations.History)
		locations.DELETE("/search-history", verified, h.Locations.ClearHistory)
		locations.GET("/:id", h.Locations.Get)
		locations.PUT("/:id", audit("update", "location"), h.Locations.Update)
		locations.DELETE("/:id", audit("delete", "location"), h.Locations.Delete)
	}
}
