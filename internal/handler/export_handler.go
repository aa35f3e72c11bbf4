package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/service"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/response"
)

type exportService interface {
	CreateJob(ctx context.Context, sess *models.Session, req service.ExportRequest) (*service.ExportJobStatus, error)
	GetStatus(ctx context.Context, sess *models.Session, id string) (*service.ExportJobStatus, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler queues event exports and serves finished files.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Queue an export of the current event list view
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest true "Format and list view"
// @Success 202 {object} response.Envelope
// @Router /api/v1/events/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req service.ExportRequest
	if err := bindJSON(c, &req, "export"); err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.service.CreateJob(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusAccepted, status, nil)
}

// Status godoc
// @Summary Export job progress
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/events/exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.service.GetStatus(c.Request.Context(), sessionOf(c), id.String())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export
// @Description The signed token is the credential; no bearer token is needed.
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /api/v1/export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	result, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), result.ContentType, result.File, nil)
}
