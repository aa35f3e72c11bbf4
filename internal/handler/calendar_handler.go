package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/service"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type calendarView func(ctx context.Context, sess *models.Session, ref time.Time, tz, status string) (*service.CalendarView, error)

// CalendarHandler serves month, week and day grids.
type CalendarHandler struct {
	events eventService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(events eventService) *CalendarHandler {
	return &CalendarHandler{events: events}
}

// Month godoc
// @Summary Month grid
// @Description 42 day cells starting on the Sunday on or before the 1st.
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Param tz query string false "IANA timezone"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /api/v1/calendar/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	h.render(c, h.events.Month)
}

// Week godoc
// @Summary Week grid
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD)"
// @Param tz query string false "IANA timezone"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /api/v1/calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	h.render(c, h.events.Week)
}

// Day godoc
// @Summary Single day
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD)"
// @Param tz query string false "IANA timezone"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /api/v1/calendar/day [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	h.render(c, h.events.Day)
}

func (h *CalendarHandler) render(c *gin.Context, view calendarView) {
	tz := timezoneOf(c)
	loc, err := h.events.Location(tz)
	if err != nil {
		response.Error(c, err)
		return
	}
	ref, err := dateQuery(c, "date", loc, time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := view(c.Request.Context(), sessionOf(c), ref, tz, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result, nil)
}
