package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

const locationsPath = "/api/v1/locations"

// ListLocations returns one backend page of locations.
func (c *Client) ListLocations(ctx context.Context, sess *models.Session, page, size int) (*models.Page[models.Location], error) {
	var out models.Page[models.Location]
	req := request{name: "locations.list", method: http.MethodGet, path: locationsPath, query: pageQuery(page, size), session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLocation fetches one location.
func (c *Client) GetLocation(ctx context.Context, sess *models.Session, id models.ID) (*models.Location, error) {
	var out models.Location
	req := request{name: "locations.get", method: http.MethodGet, path: idPath(locationsPath, id), session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLocation persists a location.
func (c *Client) CreateLocation(ctx context.Context, sess *models.Session, draft models.LocationDraft) (*models.Location, error) {
	var out models.Location
	req := request{name: "locations.create", method: http.MethodPost, path: locationsPath, body: draft, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLocation replaces a location.
func (c *Client) UpdateLocation(ctx context.Context, sess *models.Session, id models.ID, draft models.LocationDraft) (*models.Location, error) {
	var out models.Location
	req := request{name: "locations.update", method: http.MethodPut, path: idPath(locationsPath, id), body: draft, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLocation removes a location.
func (c *Client) DeleteLocation(ctx context.Context, sess *models.Session, id models.ID) error {
	req := request{name: "locations.delete", method: http.MethodDelete, path: idPath(locationsPath, id), session: sess, auth: true}
	return c.do(ctx, req, nil)
}

// SearchLocations runs a free-text location search.
func (c *Client) SearchLocations(ctx context.Context, sess *models.Session, query string) ([]models.Location, error) {
	var out []models.Location
	req := request{
		name:    "locations.search",
		method:  http.MethodGet,
		path:    locationsPath + "/search",
		query:   url.Values{"query": []string{query}},
		session: sess,
		auth:    true,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
