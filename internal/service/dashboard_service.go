package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

type dashboardAnalytics interface {
	Enabled() bool
	User(ctx context.Context, sess *models.Session, userID models.ID) (*models.UserAnalytics, bool, error)
	SystemHealth(ctx context.Context, sess *models.Session) (*models.SystemHealth, bool, error)
	SystemMetrics(ctx context.Context, sess *models.Session) (*models.SystemMetrics, bool, error)
}

type dashboardEvents interface {
	Stats(ctx context.Context, sess *models.Session) (*models.EventStats, error)
	Upcoming(ctx context.Context, sess *models.Session) ([]models.Event, error)
}

type dashboardWeather interface {
	Random(ctx context.Context) (*models.WeatherSnapshot, error)
}

// Card is one independently loaded dashboard panel. Exactly one of Data and
// Error is set once loading finishes.
type Card[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the card loaded.
func (c *Card[T]) OK() bool {
	return c != nil && c.Data != nil
}

// Dashboard is the composed landing page. Admin-only cards are nil for
// regular users and analytics cards are nil while analytics is disabled.
type Dashboard struct {
	Weather       *Card[models.WeatherSnapshot] `json:"weather"`
	EventStats    *Card[models.EventStats]      `json:"eventStats"`
	Upcoming      *Card[[]models.Event]         `json:"upcomingEvents"`
	UserAnalytics *Card[models.UserAnalytics]   `json:"userAnalytics,omitempty"`
	SystemHealth  *Card[models.SystemHealth]    `json:"systemHealth,omitempty"`
	SystemMetrics *Card[models.SystemMetrics]   `json:"systemMetrics,omitempty"`
	Partial       bool                          `json:"partial"`
	GeneratedAt   time.Time                     `json:"generatedAt"`
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Analytics   dashboardAnalytics
	Events      dashboardEvents
	Weather     dashboardWeather
	Concurrency int
	Logger      *zap.Logger
}

// DashboardService composes the dashboard from independent backend calls.
type DashboardService struct {
	analytics   dashboardAnalytics
	events      dashboardEvents
	weather     dashboardWeather
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.Concurrency <= 0 {
		params.Concurrency = 4
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &DashboardService{
		analytics:   params.Analytics,
		events:      params.Events,
		weather:     params.Weather,
		concurrency: params.Concurrency,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// Load fetches every card concurrently. A failing card carries its error
// message while the rest render; only an expired session fails the whole
// dashboard, since no card can load after it.
func (s *DashboardService) Load(ctx context.Context, sess *models.Session) (*Dashboard, error) {
	dash := &Dashboard{
		Weather:    &Card[models.WeatherSnapshot]{},
		EventStats: &Card[models.EventStats]{},
		Upcoming:   &Card[[]models.Event]{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	g.Go(func() error {
		return fill(dash.Weather, func() (*models.WeatherSnapshot, error) { return s.weather.Random(gctx) })
	})
	g.Go(func() error {
		return fill(dash.EventStats, func() (*models.EventStats, error) { return s.events.Stats(gctx, sess) })
	})
	g.Go(func() error {
		return fill(dash.Upcoming, func() (*[]models.Event, error) {
			events, err := s.events.Upcoming(gctx, sess)
			if err != nil {
				return nil, err
			}
			return &events, nil
		})
	})

	if s.analytics != nil && s.analytics.Enabled() {
		dash.UserAnalytics = &Card[models.UserAnalytics]{}
		g.Go(func() error {
			return fill(dash.UserAnalytics, func() (*models.UserAnalytics, error) {
				data, _, err := s.analytics.User(gctx, sess, "")
				return data, err
			})
		})
		if sess.IsAdmin() {
			dash.SystemHealth = &Card[models.SystemHealth]{}
			dash.SystemMetrics = &Card[models.SystemMetrics]{}
			g.Go(func() error {
				return fill(dash.SystemHealth, func() (*models.SystemHealth, error) {
					data, _, err := s.analytics.SystemHealth(gctx, sess)
					return data, err
				})
			})
			g.Go(func() error {
				return fill(dash.SystemMetrics, func() (*models.SystemMetrics, error) {
					data, _, err := s.analytics.SystemMetrics(gctx, sess)
					return data, err
				})
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash.Partial = !dash.Weather.OK() || !dash.EventStats.OK() || !dash.Upcoming.OK() ||
		(dash.UserAnalytics != nil && !dash.UserAnalytics.OK()) ||
		(dash.SystemHealth != nil && !dash.SystemHealth.OK()) ||
		(dash.SystemMetrics != nil && !dash.SystemMetrics.OK())
	if dash.Partial {
		s.logger.Warn("dashboard loaded partially", zap.String("user", sess.Key()))
	}
	dash.GeneratedAt = s.now().UTC()
	return dash, nil
}

func fill[T any](card *Card[T], load func() (*T, error)) error {
	data, err := load()
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionExpired) {
			return err
		}
		card.Error = appErrors.FromError(err).Message
		return nil
	}
	card.Data = data
	return nil
}
