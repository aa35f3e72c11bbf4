package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/pkg/export"
	"github.com/noah-isme/weather-events-bff/pkg/storage"
)

type csvRendererSpy struct {
	last export.Dataset
}

func (s *csvRendererSpy) Render(data export.Dataset) ([]byte, error) {
	s.last = data
	return export.NewCSVExporter().Render(data)
}

func newTestExportService(t *testing.T, backend *eventBackendStub, ttl time.Duration) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(ExportServiceParams{
		Events:  backend,
		Storage: store,
		Signer:  storage.NewSignedURLSigner("secret", ttl),
		Config:  ExportConfig{APIPrefix: "/api/v1/"},
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 11, 12, 30, 0, 0, time.UTC) }
	return svc, store
}

func TestExportServiceGenerateCSVFiltersAndSorts(t *testing.T) {
	spy := &csvRendererSpy{}
	backend := &eventBackendStub{events: sampleEvents()}
	svc, store := newTestExportService(t, backend, time.Hour)
	svc.csv = spy

	job := &models.ExportJob{ID: "job-1", Params: models.ExportJobParams{
		Format:    models.ExportFormatCSV,
		Status:    string(models.EventStatusScheduled),
		SortKey:   "eventName",
		SortOrder: "asc",
		Timezone:  "Europe/Paris",
	}}
	result, err := svc.Generate(context.Background(), testSession(), job)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, "events/events_job-1_20240311_123000.csv", result.RelativePath)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/job-1."))
	assert.Equal(t, []string{"Beta", "Broken", "Gamma"}, spy.last.Column("Name"))
	assert.Equal(t, "2024-03-11 10:00", spy.last.Rows[0]["Start"])
	assert.Equal(t, "", spy.last.Rows[1]["Start"])

	data, err := store.Read(result.RelativePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Name,Type,Status")

	claims, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", claims.JobID)
	assert.Equal(t, result.RelativePath, claims.File)
}

func TestExportServiceGenerateICSSkipsUnplaceableEvents(t *testing.T) {
	backend := &eventBackendStub{events: sampleEvents()}
	svc, _ := newTestExportService(t, backend, time.Hour)

	result, err := svc.Generate(context.Background(), testSession(), &models.ExportJob{ID: "job-2", Params: models.ExportJobParams{Format: models.ExportFormatICS}})
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatICS, result.Format)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	body := string(raw)
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "UID:1@weather-events")
	assert.NotContains(t, body, "UID:4@weather-events")
}

func TestExportServiceGenerateRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestExportService(t, &eventBackendStub{events: sampleEvents()}, time.Hour)
	_, err := svc.Generate(context.Background(), testSession(), &models.ExportJob{ID: "job-3", Params: models.ExportJobParams{Format: "xlsx"}})
	assert.Error(t, err)
}

func TestExportHelpers(t *testing.T) {
	assert.Equal(t, export.PDFContentType, ContentTypeFor(models.ExportFormatPDF))
	assert.Equal(t, export.ICSContentType, ContentTypeFor(models.ExportFormatICS))
	assert.Equal(t, export.CSVContentType, ContentTypeFor(models.ExportFormatCSV))
	assert.Equal(t, "a_b-c", sanitizeFilename("a b/c"))
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, time.UTC, exportLocation("Mars/Olympus"))
	assert.Equal(t, "tok", extractToken("/api/v1/export/tok"))
}
