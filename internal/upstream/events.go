package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

const eventsPath = "/api/v1/events"

// ListEvents returns one backend page of the session user's events.
func (c *Client) ListEvents(ctx context.Context, sess *models.Session, page, size int) (*models.Page[models.Event], error) {
	var out models.Page[models.Event]
	req := request{name: "events.list", method: http.MethodGet, path: eventsPath, query: pageQuery(page, size), session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllEvents returns every event visible to the session.
func (c *Client) AllEvents(ctx context.Context, sess *models.Session) ([]models.Event, error) {
	var out []models.Event
	req := request{name: "events.all", method: http.MethodGet, path: eventsPath + "/all", session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpcomingEvents returns the backend's upcoming list.
func (c *Client) UpcomingEvents(ctx context.Context, sess *models.Session) ([]models.Event, error) {
	var out []models.Event
	req := request{name: "events.upcoming", method: http.MethodGet, path: eventsPath + "/upcoming", session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EventStats returns aggregate counts.
func (c *Client) EventStats(ctx context.Context, sess *models.Session) (*models.EventStats, error) {
	var out models.EventStats
	req := request{name: "events.stats", method: http.MethodGet, path: eventsPath + "/stats", session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEvent fetches one event.
func (c *Client) GetEvent(ctx context.Context, sess *models.Session, id models.ID) (*models.Event, error) {
	var out models.Event
	req := request{name: "events.get", method: http.MethodGet, path: idPath(eventsPath, id), session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEvent persists a new event.
func (c *Client) CreateEvent(ctx context.Context, sess *models.Session, payload models.EventPayload) (*models.Event, error) {
	var out models.Event
	req := request{name: "events.create", method: http.MethodPost, path: eventsPath, body: payload, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEvent replaces an existing event.
func (c *Client) UpdateEvent(ctx context.Context, sess *models.Session, id models.ID, payload models.EventPayload) (*models.Event, error) {
	var out models.Event
	req := request{name: "events.update", method: http.MethodPut, path: idPath(eventsPath, id), body: payload, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, sess *models.Session, id models.ID) error {
	req := request{name: "events.delete", method: http.MethodDelete, path: idPath(eventsPath, id), session: sess, auth: true}
	return c.do(ctx, req, nil)
}

// SearchEvents runs a backend search.
func (c *Client) SearchEvents(ctx context.Context, sess *models.Session, search models.EventSearchRequest) (*models.Page[models.Event], error) {
	var out models.Page[models.Event]
	req := request{name: "events.search", method: http.MethodPost, path: eventsPath + "/search", body: search, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckEventName asks whether name is still free for the session user.
func (c *Client) CheckEventName(ctx context.Context, sess *models.Session, name string) (*models.NameAvailability, error) {
	var raw json.RawMessage
	req := request{
		name:    "events.check_name",
		method:  http.MethodGet,
		path:    eventsPath + "/check-name",
		query:   url.Values{"eventName": []string{name}},
		session: sess,
		auth:    true,
	}
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	available, err := decodeAvailability(raw)
	if err != nil {
		return nil, err
	}
	return &models.NameAvailability{EventName: name, Available: available}, nil
}

// decodeAvailability accepts a bare boolean (true = available) or an object
// carrying "available" or "exists".
func decodeAvailability(raw json.RawMessage) (bool, error) {
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag, nil
	}
	var obj struct {
		Available *bool `json:"available"`
		Exists    *bool `json:"exists"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.Available != nil:
			return *obj.Available, nil
		case obj.Exists != nil:
			return !*obj.Exists, nil
		}
	}
	return false, appErrors.Clone(appErrors.ErrUpstreamDecode, "unexpected name availability payload")
}

// Conflicts lists events overlapping [start, end].
func (c *Client) Conflicts(ctx context.Context, sess *models.Session, start, end time.Time) ([]models.Event, error) {
	var out []models.Event
	q := url.Values{}
	q.Set("startDate", start.Format(time.RFC3339))
	q.Set("endDate", end.Format(time.RFC3339))
	req := request{name: "events.conflicts", method: http.MethodGet, path: eventsPath + "/conflicts", query: q, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
