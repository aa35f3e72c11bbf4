package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// DefaultWeatherSchedule refreshes the landing-page weather every five minutes.
const DefaultWeatherSchedule = "@every 5m"

// RandomWeatherSource fetches one random observation.
type RandomWeatherSource interface {
	RandomWeather(ctx context.Context) (*models.CurrentWeather, error)
}

// WeatherRefresher keeps a background-refreshed random weather snapshot.
// Each successful refresh replaces the snapshot; failed refreshes keep the
// previous one.
type WeatherRefresher struct {
	source   RandomWeatherSource
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	snapshot *models.WeatherSnapshot
}

// NewWeatherRefresher builds a refresher for the given cron spec.
func NewWeatherRefresher(source RandomWeatherSource, schedule string, logger *zap.Logger) *WeatherRefresher {
	if schedule == "" {
		schedule = DefaultWeatherSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherRefresher{
		source:   source,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger,
		now:      time.Now,
	}
}

// Start performs an initial refresh and schedules the rest. ctx bounds every
// scheduled refresh.
func (r *WeatherRefresher) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.Refresh(ctx); err != nil {
			r.logger.Warn("weather refresh failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Warn("initial weather refresh failed", zap.Error(err))
	}
	r.cron.Start()
	r.logger.Info("weather refresher started", zap.String("schedule", r.schedule))
	return nil
}

// Stop halts scheduling and returns a context done once running refreshes finish.
func (r *WeatherRefresher) Stop() context.Context {
	return r.cron.Stop()
}

// Refresh fetches a new observation and replaces the snapshot.
func (r *WeatherRefresher) Refresh(ctx context.Context) (*models.WeatherSnapshot, error) {
	weather, err := r.source.RandomWeather(ctx)
	if err != nil {
		return nil, err
	}
	snap := &models.WeatherSnapshot{Weather: *weather, FetchedAt: r.now().UTC()}
	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()
	return snap, nil
}

// Snapshot returns a copy of the latest snapshot.
func (r *WeatherRefresher) Snapshot() (*models.WeatherSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return nil, false
	}
	snap := *r.snapshot
	return &snap, true
}
