package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/listing"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/pkg/export"
	"github.com/noah-isme/weather-events-bff/pkg/storage"
)

var eventExportHeaders = []string{"Name", "Type", "Status", "Start", "End", "Outdoor", "Participants", "Description"}

type eventSource interface {
	AllEvents(ctx context.Context, sess *models.Session) ([]models.Event, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type icsRenderer interface {
	Render(feed export.CalendarFeed) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	Rows         int
	ExpiresAt    time.Time
}

// ExportServiceParams groups ExportService dependencies. Nil renderers get
// the default implementations.
type ExportServiceParams struct {
	Events  eventSource
	Storage fileStorage
	Signer  *storage.SignedURLSigner
	CSV     csvRenderer
	PDF     pdfRenderer
	ICS     icsRenderer
	Config  ExportConfig
	Logger  *zap.Logger
}

// ExportService renders a user's event list into files and signs download tokens.
type ExportService struct {
	events  eventSource
	storage fileStorage
	signer  *storage.SignedURLSigner
	csv     csvRenderer
	pdf     pdfRenderer
	ics     icsRenderer
	cfg     ExportConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Config.ResultTTL <= 0 {
		params.Config.ResultTTL = 24 * time.Hour
	}
	if params.CSV == nil {
		params.CSV = export.NewCSVExporter()
	}
	if params.PDF == nil {
		params.PDF = export.NewPDFExporter()
	}
	if params.ICS == nil {
		params.ICS = export.NewICSExporter("")
	}
	return &ExportService{
		events:  params.Events,
		storage: params.Storage,
		signer:  params.Signer,
		csv:     params.CSV,
		pdf:     params.PDF,
		ics:     params.ICS,
		cfg:     params.Config,
		logger:  params.Logger,
		now:     time.Now,
	}
}

// Generate renders the job's event list view and stores the file.
func (s *ExportService) Generate(ctx context.Context, sess *models.Session, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	events, err := s.events.AllEvents(ctx, sess)
	if err != nil {
		return nil, err
	}
	events = listing.SortEvents(
		listing.FilterByStatus(events, job.Params.Status),
		listing.ParseSortKey(job.Params.SortKey),
		listing.ParseSortOrder(job.Params.SortOrder),
	)
	loc := exportLocation(job.Params.Timezone)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(eventDataset(events, loc))
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(eventDataset(events, loc), "Events")
	case models.ExportFormatICS:
		payload, err = s.ics.Render(eventFeed(events, loc))
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.filename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("format", string(job.Params.Format)), zap.Int("rows", len(events)))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.DownloadURL(token),
		Format:       job.Params.Format,
		Rows:         len(events),
		ExpiresAt:    expiresAt,
	}, nil
}

// DownloadURL returns the path a token is served under.
func (s *ExportService) DownloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return prefix + "/export/" + token
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.DownloadClaims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// ResultTTL is how long finished exports are kept.
func (s *ExportService) ResultTTL() time.Duration {
	return s.cfg.ResultTTL
}

func (s *ExportService) filename(job *models.ExportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("events/events_%s_%s.%s", sanitizeFilename(job.ID), timestamp, job.Params.Format)
}

// ContentTypeFor maps an export format to its MIME type.
func ContentTypeFor(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatPDF:
		return export.PDFContentType
	case models.ExportFormatICS:
		return export.ICSContentType
	default:
		return export.CSVContentType
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func exportLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

func eventDataset(events []models.Event, loc *time.Location) export.Dataset {
	rows := make([]map[string]string, 0, len(events))
	for _, e := range events {
		names := make([]string, 0, len(e.Users))
		for _, u := range e.Users {
			names = append(names, u.DisplayName())
		}
		rows = append(rows, map[string]string{
			"Name":         e.EventName,
			"Type":         string(e.EventType),
			"Status":       string(e.EventStatus),
			"Start":        formatExportTime(e.StartIn(loc)),
			"End":          formatExportTime(endOf(e, loc)),
			"Outdoor":      strconv.FormatBool(e.IsOutdoor),
			"Participants": strings.Join(names, ", "),
			"Description":  e.EventDescription,
		})
	}
	return export.Dataset{Headers: eventExportHeaders, Rows: rows}
}

func eventFeed(events []models.Event, loc *time.Location) export.CalendarFeed {
	entries := make([]export.CalendarEntry, 0, len(events))
	for _, e := range events {
		if !e.HasValidRange() {
			continue
		}
		entries = append(entries, export.CalendarEntry{
			UID:         e.ID.String() + "@weather-events",
			Summary:     e.EventName,
			Description: e.EventDescription,
			Start:       e.StartIn(loc),
			End:         endOf(e, loc),
			Status:      string(e.EventStatus),
			Categories:  []string{string(e.EventType)},
			Modified:    e.UpdatedAt,
		})
	}
	return export.CalendarFeed{Name: "Events", Entries: entries}
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// endOf is the explicit end in loc, or zero when the event has none.
func endOf(e models.Event, loc *time.Location) time.Time {
	if e.EndDate == nil || e.EndDate.IsZero() {
		return time.Time{}
	}
	return e.EndIn(loc)
}
