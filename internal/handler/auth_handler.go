package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	PasswordStrength(password, confirmation string) validation.PasswordStrength
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

type passwordStrengthRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login godoc
// @Summary Authenticate user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req, "login"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Register godoc
// @Summary Register a new account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := bindJSON(c, &req, "registration"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// PasswordStrength godoc
// @Summary Score a candidate password
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/auth/password-strength [post]
func (h *AuthHandler) PasswordStrength(c *gin.Context) {
	var req passwordStrengthRequest
	if err := bindJSON(c, &req, "password"); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.PasswordStrength(req.Password, req.ConfirmPassword), nil)
}

// Session returns what the BFF knows about the caller's token.
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	sess := sessionOf(c)
	response.JSON(c, http.StatusOK, gin.H{
		"authenticated": sess.Authenticated(),
		"user":          sess.User,
		"expiresAt":     sess.ExpiresAt,
		"isAdmin":       sess.IsAdmin(),
	}, nil)
}
