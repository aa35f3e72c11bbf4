package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/debounce"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

// CheckBackend performs the remote lookups behind form checks.
type CheckBackend interface {
	CheckEventName(ctx context.Context, sess *models.Session, name string) (*models.NameAvailability, error)
	Conflicts(ctx context.Context, sess *models.Session, start, end time.Time) ([]models.Event, error)
}

// NameCheckRequest asks whether a name is free. CurrentName is the name the
// event had before editing; keeping it is always allowed. Errors carries the
// form's existing field errors so the answer can be merged into them.
type NameCheckRequest struct {
	EventName   string            `json:"eventName"`
	CurrentName string            `json:"currentName,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// NameCheckResult is the merged form state after a name lookup.
type NameCheckResult struct {
	EventName string            `json:"eventName"`
	Available bool              `json:"available"`
	Form      validation.Result `json:"form"`
}

// ConflictCheckRequest is a candidate time range.
type ConflictCheckRequest struct {
	StartDate time.Time  `json:"startDate" binding:"required"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	ExcludeID models.ID  `json:"excludeId,omitempty"`
}

// ConflictCheckResult lists events overlapping the candidate range.
type ConflictCheckResult struct {
	HasConflicts bool           `json:"hasConflicts"`
	Conflicts    []models.Event `json:"conflicts"`
}

// CheckService runs debounced availability and conflict checks. Only the
// latest check per user and field produces a result; older ones fail with
// ErrSuperseded.
type CheckService struct {
	backend CheckBackend
	group   *debounce.Group
	logger  *zap.Logger
}

// NewCheckService constructs a CheckService.
func NewCheckService(backend CheckBackend, window time.Duration, logger *zap.Logger) *CheckService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckService{backend: backend, group: debounce.NewGroup(window), logger: logger}
}

// CheckName looks up name availability after the quiet window and merges a
// taken name into the eventName error unless that field already has one.
func (s *CheckService) CheckName(ctx context.Context, sess *models.Session, req NameCheckRequest) (*NameCheckResult, error) {
	name := strings.TrimSpace(req.EventName)
	form := formFromErrors(req.Errors)
	result := &NameCheckResult{EventName: name, Available: true, Form: form}
	if name == "" || strings.EqualFold(name, strings.TrimSpace(req.CurrentName)) {
		return result, nil
	}

	availability, err := debounce.Do(ctx, s.group, checkKey(sess, "eventName"), func(ctx context.Context) (*models.NameAvailability, error) {
		return s.backend.CheckEventName(ctx, sess, name)
	})
	if err != nil {
		if !errors.Is(err, appErrors.ErrSuperseded) {
			s.logger.Debug("event name check failed", zap.String("user", sess.Key()), zap.Error(err))
		}
		return nil, err
	}

	result.Available = availability.Available
	if !availability.Available {
		result.Form = validation.MergeErrors(form, "eventName", validation.MsgEventNameTaken)
	}
	return result, nil
}

// CheckConflicts lists events overlapping the candidate range after the quiet window.
func (s *CheckService) CheckConflicts(ctx context.Context, sess *models.Session, req ConflictCheckRequest) (*ConflictCheckResult, error) {
	start := req.StartDate
	end := start
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end = *req.EndDate
	}
	if start.IsZero() || end.Before(start) {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid range", map[string]string{"endDate": validation.MsgEndDateBeforeStart})
	}

	events, err := debounce.Do(ctx, s.group, checkKey(sess, "conflicts"), func(ctx context.Context) ([]models.Event, error) {
		return s.backend.Conflicts(ctx, sess, start, end)
	})
	if err != nil {
		return nil, err
	}

	conflicts := make([]models.Event, 0, len(events))
	for _, e := range events {
		if req.ExcludeID != "" && e.ID == req.ExcludeID {
			continue
		}
		conflicts = append(conflicts, e)
	}
	return &ConflictCheckResult{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}, nil
}

func checkKey(sess *models.Session, field string) string {
	return sess.Key() + ":" + field
}

func formFromErrors(errs map[string]string) validation.Result {
	form := validation.Result{Valid: true, Errors: make(map[string]string, len(errs))}
	for k, v := range errs {
		if v == "" {
			continue
		}
		form.Errors[k] = v
		form.Valid = false
	}
	return form
}
