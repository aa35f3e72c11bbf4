package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/service"
)

const unmatchedRoute = "unmatched"

// infraRoutes are scraped or polled by infrastructure and never observed.
var infraRoutes = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics observes one sample per request keyed by the matched route
// template, so raw paths with ids or tokens never become label values.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, infra := infraRoutes[route]; infra {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
