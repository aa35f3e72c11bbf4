package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type weatherService interface {
	Random(ctx context.Context) (*models.WeatherSnapshot, error)
	Current(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.CurrentWeather, bool, error)
	Forecast(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.Forecast, bool, error)
	Historical(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.HistoricalWeather, bool, error)
}

// WeatherHandler serves weather lookups.
type WeatherHandler struct {
	service weatherService
}

// NewWeatherHandler constructs the handler.
func NewWeatherHandler(svc weatherService) *WeatherHandler {
	return &WeatherHandler{service: svc}
}

// Random godoc
// @Summary Landing page weather
// @Description Served from the background-refreshed snapshot.
// @Tags Weather
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/weather/random [get]
func (h *WeatherHandler) Random(c *gin.Context) {
	snap, err := h.service.Random(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, snap, nil)
}

// Current godoc
// @Summary Current conditions
// @Tags Weather
// @Produce json
// @Param locationId query string false "Saved location ID"
// @Param city query string false "City"
// @Param lat query number false "Latitude"
// @Param lon query number false "Longitude"
// @Success 200 {object} response.Envelope
// @Router /api/weather/current [get]
func (h *WeatherHandler) Current(c *gin.Context) {
	q, err := bindWeatherQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, hit, err := h.service.Current(c.Request.Context(), sessionOf(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// Forecast godoc
// @Summary Multi-day forecast
// @Tags Weather
// @Produce json
// @Param city query string false "City"
// @Param days query int false "Days (1-16)"
// @Success 200 {object} response.Envelope
// @Router /api/weather/forecast [get]
func (h *WeatherHandler) Forecast(c *gin.Context) {
	q, err := bindWeatherQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, hit, err := h.service.Forecast(c.Request.Context(), sessionOf(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

// Historical godoc
// @Summary Historical observations
// @Tags Weather
// @Produce json
// @Param city query string false "City"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /api/weather/historical [get]
func (h *WeatherHandler) Historical(c *gin.Context) {
	q, err := bindWeatherQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, hit, err := h.service.Historical(c.Request.Context(), sessionOf(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, data, hit)
}

func bindWeatherQuery(c *gin.Context) (models.WeatherQuery, error) {
	var q models.WeatherQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weather query")
	}
	return q, nil
}
