package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type locationService interface {
	Validate(draft models.LocationDraft) validation.Result
	List(ctx context.Context, sess *models.Session, page, size int) (*models.Page[models.Location], error)
	Get(ctx context.Context, sess *models.Session, id models.ID) (*models.Location, error)
	Create(ctx context.Context, sess *models.Session, draft models.LocationDraft) (*models.Location, error)
	Update(ctx context.Context, sess *models.Session, id models.ID, draft models.LocationDraft) (*models.Location, error)
	Delete(ctx context.Context, sess *models.Session, id models.ID) error
	Search(ctx context.Context, sess *models.Session, query string) ([]models.Location, error)
	History(ctx context.Context, sess *models.Session) ([]models.SearchHistoryEntry, error)
	ClearHistory(ctx context.Context, sess *models.Session) error
}

// LocationHandler exposes saved locations and location search.
type LocationHandler struct {
	service locationService
}

// NewLocationHandler constructs the handler.
func NewLocationHandler(svc locationService) *LocationHandler {
	return &LocationHandler{service: svc}
}

// List godoc
// @Summary List locations
// @Tags Locations
// @Produce json
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/v1/locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	page, size, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), sessionOf(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result.Content, result.Pagination())
}

// Get godoc
// @Summary Get location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	location, err := h.service.Get(c.Request.Context(), sessionOf(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, location, nil)
}

// Validate godoc
// @Summary Validate a location form
// @Tags Locations
// @Accept json
// @Produce json
// @Param payload body models.LocationDraft true "Location form"
// @Success 200 {object} response.Envelope
// @Router /api/v1/locations/validate [post]
func (h *LocationHandler) Validate(c *gin.Context) {
	var draft models.LocationDraft
	if err := bindJSON(c, &draft, "location"); err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, h.service.Validate(draft), nil)
}

// Create godoc
// @Summary Create location
// @Tags Locations
// @Accept json
// @Produce json
// @Param payload body models.LocationDraft true "Location form"
// @Success 201 {object} response.Envelope
// @Router /api/v1/locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var draft models.LocationDraft
	if err := bindJSON(c, &draft, "location"); err != nil {
		response.Error(c, err)
		return
	}
	location, err := h.service.Create(c.Request.Context(), sessionOf(c), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, location)
}

// Update godoc
// @Summary Update location
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param payload body models.LocationDraft true "Location form"
// @Success 200 {object} response.Envelope
// @Router /api/v1/locations/{id} [put]
func (h *LocationHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var draft models.LocationDraft
	if err := bindJSON(c, &draft, "location"); err != nil {
		response.Error(c, err)
		return
	}
	location, err := h.service.Update(c.Request.Context(), sessionOf(c), id, draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, location, nil)
}

// Delete godoc
// @Summary Delete location
// @Tags Locations
// @Param id path string true "Location ID"
// @Success 204
// @Router /api/v1/locations/{id} [delete]
func (h *LocationHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), sessionOf(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Search godoc
// @Summary Search locations
// @Description Authenticated searches are remembered in the recent-search history.
// @Tags Locations
// @Produce json
// @Param query query string true "Search text"
// @Success 200 {object} response.Envelope
// @Router /api/v1/locations/search [get]
func (h *LocationHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), sessionOf(c), c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, results, nil)
}

// History godoc
// @Summary Recent location searches
// @Tags Locations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/locations/search-history [get]
func (h *LocationHandler) History(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, entries, nil)
}

// ClearHistory godoc
// @Summary Forget recent location searches
// @Tags Locations
// @Success 204
// @Router /api/v1/locations/search-history [delete]
func (h *LocationHandler) ClearHistory(c *gin.Context) {
	if err := h.service.ClearHistory(c.Request.Context(), sessionOf(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
