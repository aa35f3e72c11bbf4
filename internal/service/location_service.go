package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

// LocationBackend is the subset of the upstream client for locations.
type LocationBackend interface {
	ListLocations(ctx context.Context, sess *models.Session, page, size int) (*models.Page[models.Location], error)
	GetLocation(ctx context.Context, sess *models.Session, id models.ID) (*models.Location, error)
	CreateLocation(ctx context.Context, sess *models.Session, draft models.LocationDraft) (*models.Location, error)
	UpdateLocation(ctx context.Context, sess *models.Session, id models.ID, draft models.LocationDraft) (*models.Location, error)
	DeleteLocation(ctx context.Context, sess *models.Session, id models.ID) error
	SearchLocations(ctx context.Context, sess *models.Session, query string) ([]models.Location, error)
}

// SearchHistoryStore persists recent location searches per user.
type SearchHistoryStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.SearchHistoryEntry, error)
	Record(ctx context.Context, userID, query string, at time.Time, limit int) error
	ClearByUser(ctx context.Context, userID string) error
}

// LocationServiceParams groups LocationService dependencies.
type LocationServiceParams struct {
	Backend      LocationBackend
	History      SearchHistoryStore
	HistoryLimit int
	Logger       *zap.Logger
}

// LocationService validates location forms and proxies location calls.
type LocationService struct {
	backend   LocationBackend
	history   SearchHistoryStore
	limit     int
	validator *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewLocationService constructs a LocationService. A nil History disables
// the recent-search list.
func NewLocationService(params LocationServiceParams) *LocationService {
	if params.HistoryLimit <= 0 {
		params.HistoryLimit = 5
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &LocationService{
		backend:   params.Backend,
		history:   params.History,
		limit:     params.HistoryLimit,
		validator: validation.Default(),
		logger:    params.Logger,
		now:       time.Now,
	}
}

// Validate normalizes and checks a draft without contacting the backend.
func (s *LocationService) Validate(draft models.LocationDraft) validation.Result {
	return s.validator.ValidateLocation(draft)
}

// List returns one page of locations.
func (s *LocationService) List(ctx context.Context, sess *models.Session, page, size int) (*models.Page[models.Location], error) {
	return s.backend.ListLocations(ctx, sess, page, size)
}

// Get returns a single location.
func (s *LocationService) Get(ctx context.Context, sess *models.Session, id models.ID) (*models.Location, error) {
	return s.backend.GetLocation(ctx, sess, id)
}

// Create validates and submits a normalized draft.
func (s *LocationService) Create(ctx context.Context, sess *models.Session, draft models.LocationDraft) (*models.Location, error) {
	draft = validation.NormalizeLocation(draft)
	if result := s.Validate(draft); !result.Valid {
		return nil, validationError(result)
	}
	return s.backend.CreateLocation(ctx, sess, draft)
}

// Update validates and submits a normalized draft.
func (s *LocationService) Update(ctx context.Context, sess *models.Session, id models.ID, draft models.LocationDraft) (*models.Location, error) {
	draft = validation.NormalizeLocation(draft)
	if result := s.Validate(draft); !result.Valid {
		return nil, validationError(result)
	}
	return s.backend.UpdateLocation(ctx, sess, id, draft)
}

// Delete removes a location.
func (s *LocationService) Delete(ctx context.Context, sess *models.Session, id models.ID) error {
	return s.backend.DeleteLocation(ctx, sess, id)
}

// Search queries the backend and remembers the query for the user. History
// failures are logged and never fail the search.
func (s *LocationService) Search(ctx context.Context, sess *models.Session, query string) ([]models.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "search query required", map[string]string{"query": "Search query is required"})
	}
	results, err := s.backend.SearchLocations(ctx, sess, query)
	if err != nil {
		return nil, err
	}
	if s.history != nil && sess.Verified() {
		if err := s.history.Record(ctx, sess.Key(), query, s.now().UTC(), s.limit); err != nil {
			s.logger.Warn("record search history failed", zap.String("user", sess.Key()), zap.Error(err))
		}
	}
	return results, nil
}

// History returns the user's most recent searches, newest first.
func (s *LocationService) History(ctx context.Context, sess *models.Session) ([]models.SearchHistoryEntry, error) {
	if !sess.Verified() {
		return nil, errUnverifiedSession
	}
	if s.history == nil {
		return []models.SearchHistoryEntry{}, nil
	}
	entries, err := s.history.ListByUser(ctx, sess.Key(), s.limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load search history")
	}
	if entries == nil {
		entries = []models.SearchHistoryEntry{}
	}
	return entries, nil
}

// ClearHistory forgets the user's searches.
func (s *LocationService) ClearHistory(ctx context.Context, sess *models.Session) error {
	if !sess.Verified() {
		return errUnverifiedSession
	}
	if s.history == nil {
		return nil
	}
	if err := s.history.ClearByUser(ctx, sess.Key()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear search history")
	}
	return nil
}
