package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

const weatherCachePrefix = "weather:"

// WeatherBackend is the subset of the upstream client for weather.
type WeatherBackend interface {
	RandomWeather(ctx context.Context) (*models.CurrentWeather, error)
	CurrentWeather(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.CurrentWeather, error)
	Forecast(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.Forecast, error)
	HistoricalWeather(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.HistoricalWeather, error)
}

// WeatherServiceParams groups WeatherService dependencies.
type WeatherServiceParams struct {
	Backend   WeatherBackend
	Cache     *CacheService
	CacheTTL  time.Duration
	Refresher *WeatherRefresher
	Logger    *zap.Logger
}

// WeatherService serves weather lookups through the response cache.
type WeatherService struct {
	backend   WeatherBackend
	cache     *CacheService
	ttl       time.Duration
	refresher *WeatherRefresher
	validator *validation.Validator
	logger    *zap.Logger
}

// NewWeatherService constructs a WeatherService.
func NewWeatherService(params WeatherServiceParams) *WeatherService {
	if params.CacheTTL <= 0 {
		params.CacheTTL = 5 * time.Minute
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &WeatherService{
		backend:   params.Backend,
		cache:     params.Cache,
		ttl:       params.CacheTTL,
		refresher: params.Refresher,
		validator: validation.Default(),
		logger:    params.Logger,
	}
}

// Random returns the landing-page weather. The background snapshot is used
// when one exists; otherwise the backend is asked directly.
func (s *WeatherService) Random(ctx context.Context) (*models.WeatherSnapshot, error) {
	if s.refresher != nil {
		if snap, ok := s.refresher.Snapshot(); ok {
			return snap, nil
		}
		return s.refresher.Refresh(ctx)
	}
	weather, err := s.backend.RandomWeather(ctx)
	if err != nil {
		return nil, err
	}
	return &models.WeatherSnapshot{Weather: *weather, FetchedAt: time.Now().UTC()}, nil
}

// Current returns current conditions for q. The boolean reports a cache hit.
func (s *WeatherService) Current(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.CurrentWeather, bool, error) {
	if err := s.validateQuery(q); err != nil {
		return nil, false, err
	}
	return RememberFor(ctx, s.cache, sess, weatherCacheKey("current", q), s.ttl, func(ctx context.Context) (*models.CurrentWeather, error) {
		return s.backend.CurrentWeather(ctx, sess, q)
	})
}

// Forecast returns the forecast for q. The boolean reports a cache hit.
func (s *WeatherService) Forecast(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.Forecast, bool, error) {
	if err := s.validateQuery(q); err != nil {
		return nil, false, err
	}
	return RememberFor(ctx, s.cache, sess, weatherCacheKey("forecast", q), s.ttl, func(ctx context.Context) (*models.Forecast, error) {
		return s.backend.Forecast(ctx, sess, q)
	})
}

// Historical returns past observations for q. The boolean reports a cache hit.
func (s *WeatherService) Historical(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.HistoricalWeather, bool, error) {
	if err := s.validateQuery(q); err != nil {
		return nil, false, err
	}
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		return nil, false, appErrors.WithFields(appErrors.ErrValidation, "invalid range", map[string]string{"endDate": validation.MsgEndDateBeforeStart})
	}
	return RememberFor(ctx, s.cache, sess, weatherCacheKey("historical", q), s.ttl, func(ctx context.Context) (*models.HistoricalWeather, error) {
		return s.backend.HistoricalWeather(ctx, sess, q)
	})
}

func (s *WeatherService) validateQuery(q models.WeatherQuery) error {
	fields := s.validator.Struct(q)
	if !q.HasPlace() {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["location"] = "A location id, city or coordinates are required"
	}
	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, "invalid weather query", fields)
	}
	return nil
}

func weatherCacheKey(kind string, q models.WeatherQuery) string {
	parts := []string{weatherCachePrefix + kind}
	if q.LocationID != "" {
		parts = append(parts, "id="+q.LocationID.String())
	}
	if q.City != "" {
		parts = append(parts, "city="+strings.ToLower(strings.TrimSpace(q.City)))
	}
	if q.Latitude != nil && q.Longitude != nil {
		parts = append(parts, "ll="+strconv.FormatFloat(*q.Latitude, 'f', 4, 64)+","+strconv.FormatFloat(*q.Longitude, 'f', 4, 64))
	}
	if q.Days > 0 {
		parts = append(parts, "days="+strconv.Itoa(q.Days))
	}
	if q.StartDate != nil {
		parts = append(parts, "from="+q.StartDate.Format("2006-01-02"))
	}
	if q.EndDate != nil {
		parts = append(parts, "to="+q.EndDate.Format("2006-01-02"))
	}
	return strings.Join(parts, ":")
}
