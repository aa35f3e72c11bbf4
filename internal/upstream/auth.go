package upstream

import (
	"context"
	"net/http"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, request{name: "auth.login", method: http.MethodPost, path: "/api/auth/login", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, request{name: "auth.register", method: http.MethodPost, path: "/api/auth/register", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
