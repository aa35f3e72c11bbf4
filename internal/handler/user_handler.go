package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type userService interface {
	Profile(ctx context.Context, sess *models.Session) (*models.User, error)
	UpdateProfile(ctx context.Context, sess *models.Session, update models.ProfileUpdate) (*models.User, error)
	Preferences(ctx context.Context, sess *models.Session) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, sess *models.Session, prefs models.Preferences) (*models.Preferences, error)
	DeleteAccount(ctx context.Context, sess *models.Session) error
}

// UserHandler serves the signed-in user's account.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Profile godoc
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} response.Envelope
// @Router /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := bindJSON(c, &update, "profile"); err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), sessionOf(c), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Preferences godoc
// @Summary Display preferences
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/users/preferences [get]
func (h *UserHandler) Preferences(c *gin.Context) {
	prefs, err := h.service.Preferences(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// UpdatePreferences godoc
// @Summary Update display preferences
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.Preferences true "Preferences"
// @Success 200 {object} response.Envelope
// @Router /api/users/preferences [put]
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	var prefs models.Preferences
	if err := bindJSON(c, &prefs, "preferences"); err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.service.UpdatePreferences(c.Request.Context(), sessionOf(c), prefs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// DeleteAccount godoc
// @Summary Delete the current account
// @Tags Users
// @Success 204
// @Router /api/users/account [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.service.DeleteAccount(c.Request.Context(), sessionOf(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
