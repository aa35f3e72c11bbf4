package upstream

import (
	"context"
	"net/http"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

const usersPath = "/api/users"

// Profile returns the session user's profile.
func (c *Client) Profile(ctx context.Context, sess *models.Session) (*models.User, error) {
	var out models.User
	req := request{name: "users.profile", method: http.MethodGet, path: usersPath + "/profile", session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes profile fields.
func (c *Client) UpdateProfile(ctx context.Context, sess *models.Session, update models.ProfileUpdate) (*models.User, error) {
	var out models.User
	req := request{name: "users.update_profile", method: http.MethodPut, path: usersPath + "/profile", body: update, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Preferences returns display preferences.
func (c *Client) Preferences(ctx context.Context, sess *models.Session) (*models.Preferences, error) {
	var out models.Preferences
	req := request{name: "users.preferences", method: http.MethodGet, path: usersPath + "/preferences", session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePreferences stores display preferences.
func (c *Client) UpdatePreferences(ctx context.Context, sess *models.Session, prefs models.Preferences) (*models.Preferences, error) {
	var out models.Preferences
	req := request{name: "users.update_preferences", method: http.MethodPut, path: usersPath + "/preferences", body: prefs, session: sess, auth: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes the session user's account and clears the session.
func (c *Client) DeleteAccount(ctx context.Context, sess *models.Session) error {
	req := request{name: "users.delete_account", method: http.MethodDelete, path: usersPath + "/account", session: sess, auth: true}
	if err := c.do(ctx, req, nil); err != nil {
		return err
	}
	sess.Clear()
	return nil
}
