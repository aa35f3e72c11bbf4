package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/middleware"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/service"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type dashboardService interface {
	Load(ctx context.Context, sess *models.Session) (*service.Dashboard, error)
}

// DashboardHandler wires the dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Landing dashboard
// @Description Cards load concurrently; a failed card carries its error and the response is marked partial.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	dash, err := h.service.Load(c.Request.Context(), sessionOf(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "partial", dash.Partial)
	respond(c, http.StatusOK, dash, nil)
}
