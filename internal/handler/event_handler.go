package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/listing"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/service"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type eventService interface {
	Location(tz string) (*time.Location, error)
	List(ctx context.Context, sess *models.Session, q listing.Query) (listing.Result, error)
	Get(ctx context.Context, sess *models.Session, id models.ID) (*models.Event, error)
	Validate(draft models.EventDraft, mode validation.Mode) validation.Result
	Create(ctx context.Context, sess *models.Session, draft models.EventDraft) (*models.Event, error)
	Update(ctx context.Context, sess *models.Session, id models.ID, draft models.EventDraft) (*models.Event, error)
	Delete(ctx context.Context, sess *models.Session, id models.ID) error
	Search(ctx context.Context, sess *models.Session, search models.EventSearchRequest) (*models.Page[models.Event], error)
	Stats(ctx context.Context, sess *models.Session) (*models.EventStats, error)
	Upcoming(ctx context.Context, sess *models.Session) ([]models.Event, error)
	Buckets(ctx context.Context, sess *models.Session, tz string) (*service.EventBuckets, error)
	Month(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*service.CalendarView, error)
	Week(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*service.CalendarView, error)
	Day(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*service.CalendarView, error)
}

type checkService interface {
	CheckName(ctx context.Context, sess *models.Session, req service.NameCheckRequest) (*service.NameCheckResult, error)
	CheckConflicts(ctx context.Context, sess *models.Session, req service.ConflictCheckRequest) (*service.ConflictCheckResult, error)
}

// EventHandler exposes event lists, forms and availability checks.
type EventHandler struct {
	events eventService
	checks checkService
}

// NewEventHandler constructs the handler.
func NewEventHandler(events eventService, checks checkService) *EventHandler {
	return &EventHandler{events: events, checks: checks}
}

// List godoc
// @Summary List events
// @Description Status filter, then stable sort, then 0-based page over the user's events.
// @Tags Events
// @Produce json
// @Param status query string false "Status or all"
// @Param sortKey query string false "startDate|eventName|eventType|eventStatus"
// @Param sortOrder query string false "asc|desc"
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events [get]
func (h *EventHandler) List(c *gin.Context) {
	page, size, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q := listing.Query{
		Status: c.Query("status"),
		Key:    listing.ParseSortKey(c.Query("sortKey")),
		Order:  listing.ParseSortOrder(c.Query("sortOrder")),
		Page:   page,
		Size:   size,
	}
	result, err := h.events.List(c.Request.Context(), sessionOf(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result.Items, &models.Pagination{
		Page:       result.Page,
		PageSize:   result.Size,
		TotalCount: result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.events.Get(c.Request.Context(), sessionOf(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, event, nil)
}

// Validate godoc
// @Summary Validate an event form
// @Tags Events
// @Accept json
// @Produce json
// @Param mode query string false "create|edit"
// @Param payload body models.EventDraft true "Event form"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/validate [post]
func (h *EventHandler) Validate(c *gin.Context) {
	var draft models.EventDraft
	if err := bindJSON(c, &draft, "event"); err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, h.events.Validate(draft, validation.ParseMode(c.Query("mode"))), nil)
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body models.EventDraft true "Event form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var draft models.EventDraft
	if err := bindJSON(c, &draft, "event"); err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.events.Create(c.Request.Context(), sessionOf(c), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body models.EventDraft true "Event form"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var draft models.EventDraft
	if err := bindJSON(c, &draft, "event"); err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.events.Update(c.Request.Context(), sessionOf(c), id, draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /api/v1/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.events.Delete(c.Request.Context(), sessionOf(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Search godoc
// @Summary Search events
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body models.EventSearchRequest true "Search criteria"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/search [post]
func (h *EventHandler) Search(c *gin.Context) {
	var req models.EventSearchRequest
	if err := bindJSON(c, &req, "search"); err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.events.Search(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, page.Content, page.Pagination())
}

// Stats godoc
// @Summary Event statistics
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/stats [get]
func (h *EventHandler) Stats(c *gin.Context) {
	stats, err := h.events.Stats(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, stats, nil)
}

// Upcoming godoc
// @Summary Upcoming events
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/upcoming [get]
func (h *EventHandler) Upcoming(c *gin.Context) {
	events, err := h.events.Upcoming(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, events, nil)
}

// Buckets godoc
// @Summary Today, this week and upcoming groupings
// @Tags Events
// @Produce json
// @Param tz query string false "IANA timezone"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/buckets [get]
func (h *EventHandler) Buckets(c *gin.Context) {
	buckets, err := h.events.Buckets(c.Request.Context(), sessionOf(c), timezoneOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, buckets, nil)
}

// CheckName godoc
// @Summary Debounced event name availability
// @Description Only the latest check per user completes; older ones return 409 SUPERSEDED.
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.NameCheckRequest true "Name check"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/v1/events/check-name [post]
func (h *EventHandler) CheckName(c *gin.Context) {
	var req service.NameCheckRequest
	if err := bindJSON(c, &req, "name check"); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.checks.CheckName(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, nil)
}

// CheckConflicts godoc
// @Summary Debounced scheduling conflict check
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.ConflictCheckRequest true "Candidate range"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/v1/events/check-conflicts [post]
func (h *EventHandler) CheckConflicts(c *gin.Context) {
	var req service.ConflictCheckRequest
	if err := bindJSON(c, &req, "conflict check"); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.checks.CheckConflicts(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, nil)
}
