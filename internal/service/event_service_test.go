package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/listing"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

type eventBackendStub struct {
	events      []models.Event
	err         error
	created     []models.EventPayload
	updated     map[models.ID]models.EventPayload
	deleted     []models.ID
	allCalls    int
	conflictArg [2]time.Time
}

func (s *eventBackendStub) AllEvents(context.Context, *models.Session) ([]models.Event, error) {
	s.allCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *eventBackendStub) UpcomingEvents(context.Context, *models.Session) ([]models.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func (s *eventBackendStub) EventStats(context.Context, *models.Session) (*models.EventStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.EventStats{TotalEvents: len(s.events)}, nil
}

func (s *eventBackendStub) GetEvent(_ context.Context, _ *models.Session, id models.ID) (*models.Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (s *eventBackendStub) CreateEvent(_ context.Context, _ *models.Session, payload models.EventPayload) (*models.Event, error) {
	s.created = append(s.created, payload)
	return &models.Event{ID: "new", EventName: payload.EventName, StartDate: payload.StartDate}, nil
}

func (s *eventBackendStub) UpdateEvent(_ context.Context, _ *models.Session, id models.ID, payload models.EventPayload) (*models.Event, error) {
	if s.updated == nil {
		s.updated = make(map[models.ID]models.EventPayload)
	}
	s.updated[id] = payload
	return &models.Event{ID: id, EventName: payload.EventName}, nil
}

func (s *eventBackendStub) DeleteEvent(_ context.Context, _ *models.Session, id models.ID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *eventBackendStub) SearchEvents(context.Context, *models.Session, models.EventSearchRequest) (*models.Page[models.Event], error) {
	return &models.Page[models.Event]{Content: s.events, TotalElements: int64(len(s.events))}, nil
}

func (s *eventBackendStub) Conflicts(_ context.Context, _ *models.Session, start, end time.Time) ([]models.Event, error) {
	s.conflictArg = [2]time.Time{start, end}
	return s.events, nil
}

func testSession() *models.Session {
	return &models.Session{Token: "token", User: &models.User{ID: "42", Username: "ada"}}
}

func sampleEvents() []models.Event {
	end := time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)
	return []models.Event{
		{ID: "1", EventName: "Beta", EventType: models.EventTypeMeeting, EventStatus: models.EventStatusScheduled, StartDate: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC), EndDate: &end},
		{ID: "2", EventName: "alpha", EventType: models.EventTypeConcert, EventStatus: models.EventStatusCompleted, StartDate: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)},
		{ID: "3", EventName: "Gamma", EventType: models.EventTypeSports, EventStatus: models.EventStatusScheduled, StartDate: time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)},
		{ID: "4", EventName: "Broken", EventType: models.EventTypeOther, EventStatus: models.EventStatusScheduled},
	}
}

func newTestEventService(backend *eventBackendStub, now time.Time) *EventService {
	svc := NewEventService(backend, "UTC", nil)
	svc.now = func() time.Time { return now }
	return svc
}

func boolPtr(v bool) *bool { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestEventServiceListFiltersSortsAndPaginates(t *testing.T) {
	backend := &eventBackendStub{events: sampleEvents()}
	svc := newTestEventService(backend, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	result, err := svc.List(context.Background(), testSession(), listing.Query{
		Status: string(models.EventStatusScheduled),
		Key:    listing.SortByEventName,
		Order:  listing.Asc,
		Page:   0,
		Size:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Beta", result.Items[0].EventName)
	assert.Equal(t, "Broken", result.Items[1].EventName)
}

func TestEventServiceCreateRejectsInvalidDraftWithoutBackendCall(t *testing.T) {
	backend := &eventBackendStub{}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestEventService(backend, now)

	draft := models.EventDraft{
		EventName:        "  ",
		EventDescription: "desc",
		EventType:        "MEETING",
		StartDate:        timePtr(now.Add(-time.Hour)),
		IsOutdoor:        boolPtr(false),
	}
	_, err := svc.Create(context.Background(), testSession(), draft)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, validation.MsgEventNameRequired, appErr.Fields["eventName"])
	assert.Equal(t, validation.MsgStartDateInPast, appErr.Fields["startDate"])
	assert.Empty(t, backend.created)
}

func TestEventServiceCreateAndEditModes(t *testing.T) {
	backend := &eventBackendStub{}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestEventService(backend, now)

	draft := models.EventDraft{
		EventName:        " Picnic ",
		EventDescription: "Lunch in the park",
		EventType:        "festival",
		StartDate:        timePtr(now.Add(24 * time.Hour)),
		IsOutdoor:        boolPtr(true),
	}
	event, err := svc.Create(context.Background(), testSession(), draft)
	require.NoError(t, err)
	assert.Equal(t, "Picnic", event.EventName)
	require.Len(t, backend.created, 1)
	assert.Equal(t, models.EventTypeFestival, backend.created[0].EventType)
	assert.Equal(t, models.EventStatusScheduled, backend.created[0].EventStatus)

	past := draft
	past.StartDate = timePtr(now.Add(-48 * time.Hour))
	_, err = svc.Update(context.Background(), testSession(), "7", past)
	require.NoError(t, err)
	assert.Contains(t, backend.updated, models.ID("7"))
}

func TestEventServiceUpdateKeepsStoredStatusWhenOmitted(t *testing.T) {
	backend := &eventBackendStub{}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestEventService(backend, now)

	draft := models.EventDraft{
		EventName:        "Retro",
		EventDescription: "Sprint retro",
		EventType:        "MEETING",
		StartDate:        timePtr(now.Add(-2 * time.Hour)),
		IsOutdoor:        boolPtr(false),
	}
	_, err := svc.Update(context.Background(), testSession(), "7", draft)
	require.NoError(t, err)

	payload := backend.updated[models.ID("7")]
	assert.Empty(t, payload.EventStatus)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "eventStatus")

	draft.EventStatus = "completed"
	_, err = svc.Update(context.Background(), testSession(), "7", draft)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, backend.updated[models.ID("7")].EventStatus)
}

func TestEventServiceMonthView(t *testing.T) {
	backend := &eventBackendStub{events: sampleEvents()}
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	svc := newTestEventService(backend, now)

	view, err := svc.Month(context.Background(), testSession(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	assert.Equal(t, "month", view.View)
	assert.Equal(t, "UTC", view.Timezone)
	require.Len(t, view.Days, 42)

	byDay := map[string][]string{}
	for _, d := range view.Days {
		for _, e := range d.Events {
			byDay[d.Date.Format("2006-01-02")] = append(byDay[d.Date.Format("2006-01-02")], e.EventName)
		}
		if d.Date.Format("2006-01-02") == "2024-03-11" {
			assert.True(t, d.IsToday)
		}
	}
	assert.Equal(t, []string{"Beta"}, byDay["2024-03-11"])
	assert.Equal(t, []string{"Beta"}, byDay["2024-03-12"])
	assert.Equal(t, []string{"alpha"}, byDay["2024-03-01"])
	assert.Equal(t, []string{"Gamma"}, byDay["2024-03-20"])
}

func TestEventServiceWeekAndDayHonourStatusAndTimezone(t *testing.T) {
	backend := &eventBackendStub{events: sampleEvents()}
	svc := newTestEventService(backend, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))

	week, err := svc.Week(context.Background(), testSession(), time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "America/New_York", string(models.EventStatusCompleted))
	require.NoError(t, err)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "America/New_York", week.Timezone)
	for _, d := range week.Days {
		assert.Empty(t, d.Events)
	}

	day, err := svc.Day(context.Background(), testSession(), time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	require.Len(t, day.Days, 1)
	require.Len(t, day.Days[0].Events, 1)
	assert.Equal(t, "Beta", day.Days[0].Events[0].EventName)

	_, err = svc.Day(context.Background(), testSession(), time.Time{}, "Mars/Olympus", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEventServiceBuckets(t *testing.T) {
	backend := &eventBackendStub{events: sampleEvents()}
	svc := newTestEventService(backend, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))

	buckets, err := svc.Buckets(context.Background(), testSession(), "")
	require.NoError(t, err)
	require.Len(t, buckets.Today, 1)
	assert.Equal(t, "Beta", buckets.Today[0].EventName)
	require.Len(t, buckets.ThisWeek, 1)
	assert.Len(t, buckets.Upcoming, 2)
}

func TestEventServiceConflictsRejectsInvertedRange(t *testing.T) {
	backend := &eventBackendStub{}
	svc := newTestEventService(backend, time.Now())
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	_, err := svc.Conflicts(context.Background(), testSession(), start, start.Add(-time.Hour))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Conflicts(context.Background(), testSession(), start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, start, backend.conflictArg[0])
}

func TestEventServicePropagatesBackendErrors(t *testing.T) {
	backend := &eventBackendStub{err: appErrors.ErrSessionExpired}
	svc := newTestEventService(backend, time.Now())

	_, err := svc.List(context.Background(), testSession(), listing.Query{})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	_, err = svc.Buckets(context.Background(), testSession(), "")
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}
