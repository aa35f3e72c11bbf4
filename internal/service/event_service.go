package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/calendar"
	"github.com/noah-isme/weather-events-bff/internal/listing"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

// EventBackend is the subset of the upstream client the event service uses.
type EventBackend interface {
	AllEvents(ctx context.Context, sess *models.Session) ([]models.Event, error)
	UpcomingEvents(ctx context.Context, sess *models.Session) ([]models.Event, error)
	EventStats(ctx context.Context, sess *models.Session) (*models.EventStats, error)
	GetEvent(ctx context.Context, sess *models.Session, id models.ID) (*models.Event, error)
	CreateEvent(ctx context.Context, sess *models.Session, payload models.EventPayload) (*models.Event, error)
	UpdateEvent(ctx context.Context, sess *models.Session, id models.ID, payload models.EventPayload) (*models.Event, error)
	DeleteEvent(ctx context.Context, sess *models.Session, id models.ID) error
	SearchEvents(ctx context.Context, sess *models.Session, search models.EventSearchRequest) (*models.Page[models.Event], error)
	Conflicts(ctx context.Context, sess *models.Session, start, end time.Time) ([]models.Event, error)
}

// CalendarView is a bucketed month, week or day.
type CalendarView struct {
	View      string               `json:"view"`
	Reference time.Time            `json:"reference"`
	Timezone  string               `json:"timezone"`
	Days      []calendar.DayBucket `json:"days"`
}

// EventBuckets groups events for the landing widgets.
type EventBuckets struct {
	Timezone string         `json:"timezone"`
	Today    []models.Event `json:"today"`
	ThisWeek []models.Event `json:"thisWeek"`
	Upcoming []models.Event `json:"upcoming"`
}

// EventService serves event lists, forms and calendar views on top of the backend.
type EventService struct {
	backend    EventBackend
	validator  *validation.Validator
	defaultLoc *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewEventService constructs an EventService. An unknown default timezone
// falls back to UTC.
func NewEventService(backend EventBackend, defaultTZ string, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(defaultTZ)
	if err != nil || defaultTZ == "" {
		if defaultTZ != "" {
			logger.Warn("unknown default timezone, using UTC", zap.String("timezone", defaultTZ))
		}
		loc = time.UTC
	}
	return &EventService{
		backend:    backend,
		validator:  validation.Default(),
		defaultLoc: loc,
		logger:     logger,
		now:        time.Now,
	}
}

// Location resolves an IANA zone name, defaulting to the configured zone.
func (s *EventService) Location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return s.defaultLoc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "unknown timezone", map[string]string{"tz": "Unknown timezone"})
	}
	return loc, nil
}

// List filters, sorts and paginates the full event list.
func (s *EventService) List(ctx context.Context, sess *models.Session, q listing.Query) (listing.Result, error) {
	events, err := s.backend.AllEvents(ctx, sess)
	if err != nil {
		return listing.Result{}, err
	}
	return listing.Apply(events, q), nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, sess *models.Session, id models.ID) (*models.Event, error) {
	return s.backend.GetEvent(ctx, sess, id)
}

// Validate checks a draft without contacting the backend.
func (s *EventService) Validate(draft models.EventDraft, mode validation.Mode) validation.Result {
	return s.validator.ValidateEvent(draft, mode, s.now())
}

// Create validates draft in create mode and submits it, defaulting the status
// to SCHEDULED. Validation failures never reach the backend.
func (s *EventService) Create(ctx context.Context, sess *models.Session, draft models.EventDraft) (*models.Event, error) {
	if result := s.Validate(draft, validation.ModeCreate); !result.Valid {
		return nil, validationError(result)
	}
	payload := draft.ToPayload()
	if payload.EventStatus == "" {
		payload.EventStatus = models.EventStatusScheduled
	}
	event, err := s.backend.CreateEvent(ctx, sess, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.String("event_id", event.ID.String()), zap.String("user", sess.Key()))
	return event, nil
}

// Update validates draft in edit mode, where a past start date is allowed.
func (s *EventService) Update(ctx context.Context, sess *models.Session, id models.ID, draft models.EventDraft) (*models.Event, error) {
	if result := s.Validate(draft, validation.ModeEdit); !result.Valid {
		return nil, validationError(result)
	}
	return s.backend.UpdateEvent(ctx, sess, id, draft.ToPayload())
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, sess *models.Session, id models.ID) error {
	if err := s.backend.DeleteEvent(ctx, sess, id); err != nil {
		return err
	}
	s.logger.Info("event deleted", zap.String("event_id", id.String()), zap.String("user", sess.Key()))
	return nil
}

// Search proxies the backend search.
func (s *EventService) Search(ctx context.Context, sess *models.Session, search models.EventSearchRequest) (*models.Page[models.Event], error) {
	return s.backend.SearchEvents(ctx, sess, search)
}

// Stats proxies the backend statistics.
func (s *EventService) Stats(ctx context.Context, sess *models.Session) (*models.EventStats, error) {
	return s.backend.EventStats(ctx, sess)
}

// Upcoming proxies the backend upcoming list.
func (s *EventService) Upcoming(ctx context.Context, sess *models.Session) ([]models.Event, error) {
	return s.backend.UpcomingEvents(ctx, sess)
}

// Conflicts lists events overlapping [start, end].
func (s *EventService) Conflicts(ctx context.Context, sess *models.Session, start, end time.Time) ([]models.Event, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid range", map[string]string{"endDate": validation.MsgEndDateBeforeStart})
	}
	return s.backend.Conflicts(ctx, sess, start, end)
}

// Month returns the 42-cell grid around ref.
func (s *EventService) Month(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*CalendarView, error) {
	return s.view(ctx, sess, "month", ref, tz, status, calendar.BucketMonth)
}

// Week returns the Sunday-first week containing ref.
func (s *EventService) Week(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*CalendarView, error) {
	return s.view(ctx, sess, "week", ref, tz, status, calendar.BucketWeek)
}

// Day returns the single day containing ref.
func (s *EventService) Day(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*CalendarView, error) {
	return s.view(ctx, sess, "day", ref, tz, status, func(events []models.Event, ref, now time.Time, loc *time.Location) []calendar.DayBucket {
		return []calendar.DayBucket{calendar.BucketDay(events, ref, now, loc)}
	})
}

// Buckets returns today, this week and upcoming groupings.
func (s *EventService) Buckets(ctx context.Context, sess *models.Session, tz string) (*EventBuckets, error) {
	loc, err := s.Location(tz)
	if err != nil {
		return nil, err
	}
	events, err := s.backend.AllEvents(ctx, sess)
	if err != nil {
		return nil, err
	}
	summary := calendar.Summarize(events, s.now(), loc)
	return &EventBuckets{
		Timezone: loc.String(),
		Today:    summary.Today,
		ThisWeek: summary.ThisWeek,
		Upcoming: summary.Upcoming,
	}, nil
}

type bucketFunc func(events []models.Event, ref, now time.Time, loc *time.Location) []calendar.DayBucket

func (s *EventService) view(ctx context.Context, sess *models.Session, name string, ref time.Time, tz, status string, bucket bucketFunc) (*CalendarView, error) {
	loc, err := s.Location(tz)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if ref.IsZero() {
		ref = now
	}
	events, err := s.backend.AllEvents(ctx, sess)
	if err != nil {
		return nil, err
	}
	events = listing.FilterByStatus(events, status)
	return &CalendarView{
		View:      name,
		Reference: calendar.StartOfDay(ref, loc),
		Timezone:  loc.String(),
		Days:      bucket(events, ref, now, loc),
	}, nil
}

func validationError(result validation.Result) error {
	return appErrors.WithFields(appErrors.ErrValidation, "", result.Errors)
}
