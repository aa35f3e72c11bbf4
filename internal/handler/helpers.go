package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/middleware"
	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func sessionOf(c *gin.Context) *models.Session {
	return middleware.CurrentSession(c)
}

func pathID(c *gin.Context) (models.ID, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", appErrors.WithFields(appErrors.ErrValidation, "id is required", map[string]string{"id": "id is required"})
	}
	return models.ID(id), nil
}

func bindJSON(c *gin.Context, dst interface{}, what string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what+" payload")
	}
	return nil
}

// pageParams reads the 0-based page and its size.
func pageParams(c *gin.Context) (int, int, error) {
	page, err := intQuery(c, "page", 0)
	if err != nil || page < 0 {
		return 0, 0, appErrors.WithFields(appErrors.ErrValidation, "invalid page", map[string]string{"page": "page must be a non-negative integer"})
	}
	size, err := intQuery(c, "size", defaultPageSize)
	if err != nil || size <= 0 {
		return 0, 0, appErrors.WithFields(appErrors.ErrValidation, "invalid size", map[string]string{"size": "size must be a positive integer"})
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, nil
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// timezoneHeader lets the browser send its IANA zone once for every request.
const timezoneHeader = "X-Timezone"

// timezoneOf prefers the tz query over the X-Timezone header.
func timezoneOf(c *gin.Context) string {
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		return tz
	}
	return strings.TrimSpace(c.GetHeader(timezoneHeader))
}

// dateQuery parses key as YYYY-MM-DD or RFC3339 in loc; empty returns fallback.
func dateQuery(c *gin.Context, key string, loc *time.Location, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, appErrors.WithFields(appErrors.ErrValidation, "invalid date", map[string]string{key: "use YYYY-MM-DD or RFC3339"})
}

// respond writes data with the request's response meta.
func respond(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	response.JSON(c, status, data, pagination, middleware.ResponseMeta(c))
}

func respondCached(c *gin.Context, data interface{}, hit bool) {
	middleware.SetCacheHit(c, hit)
	respond(c, http.StatusOK, data, nil)
}
