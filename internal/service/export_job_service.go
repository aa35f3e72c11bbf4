package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/listing"
	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/repository"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/jobs"
	"github.com/noah-isme/weather-events-bff/pkg/storage"
)

const exportJobType = "event_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListByStatus(ctx context.Context, status models.ExportStatus, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, sess *models.Session, job *models.ExportJob) (*ExportResult, error)
}

// ExportRequest asks for the current list view as a file.
type ExportRequest struct {
	Format    models.ExportFormat `json:"format" binding:"required"`
	Status    string              `json:"status,omitempty"`
	SortKey   string              `json:"sortKey,omitempty"`
	SortOrder string              `json:"sortOrder,omitempty"`
	Timezone  string              `json:"timezone,omitempty"`
}

// ExportJobStatus is the client view of an export job.
type ExportJobStatus struct {
	ID          string              `json:"id"`
	Format      models.ExportFormat `json:"format"`
	Status      models.ExportStatus `json:"status"`
	Progress    int                 `json:"progress"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	Error       *string             `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	FinishedAt  *time.Time          `json:"finishedAt,omitempty"`
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobServiceConfig governs queue recovery and cleanup.
type ExportJobServiceConfig struct {
	Enabled         bool
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportJobService manages the export job lifecycle.
type ExportJobService struct {
	repo     exportJobStore
	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
	cfg      ExportJobServiceConfig
	now      func() time.Time
}

// NewExportJobService constructs the service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, exporter *ExportService, logger *zap.Logger, cfg ExportJobServiceConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportJobService{repo: repo, queue: queue, exporter: exporter, logger: logger, cfg: cfg, now: time.Now}
}

// Enabled reports whether exports are served.
func (s *ExportJobService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// CreateJob validates the request, persists the job and enqueues it.
func (s *ExportJobService) CreateJob(ctx context.Context, sess *models.Session, req ExportRequest) (*ExportJobStatus, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrFeatureDisabled
	}
	if !sess.Verified() {
		return nil, errUnverifiedSession
	}
	req.Format = models.ExportFormat(strings.ToLower(string(req.Format)))
	if !req.Format.Valid() {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "unsupported export format", map[string]string{"format": "format must be one of: csv pdf ics"})
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return nil, appErrors.WithFields(appErrors.ErrValidation, "unknown timezone", map[string]string{"timezone": "Unknown timezone"})
		}
	}

	job := &models.ExportJob{
		Params: models.ExportJobParams{
			Format:    req.Format,
			Status:    req.Status,
			SortKey:   string(listing.ParseSortKey(req.SortKey)),
			SortOrder: string(listing.ParseSortOrder(req.SortOrder)),
			Timezone:  req.Timezone,
			Token:     sess.Token,
		},
		Status:    models.ExportStatusQueued,
		CreatedBy: sess.Key(),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("format", string(job.Params.Format)), zap.String("user", job.CreatedBy))
	return toExportStatus(job), nil
}

// GetStatus returns job progress. Jobs of other users are reported as not found
// unless the session is an admin.
func (s *ExportJobService) GetStatus(ctx context.Context, sess *models.Session, id string) (*ExportJobStatus, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrFeatureDisabled
	}
	if !sess.Verified() {
		return nil, errUnverifiedSession
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != sess.Key() && !sess.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return toExportStatus(job), nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	if !s.Enabled() || s.exporter == nil {
		return nil, appErrors.ErrFeatureDisabled
	}
	claims, err := s.exporter.ParseToken(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	job, err := s.repo.GetByID(ctx, claims.JobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(claims.File)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(claims.File),
		ContentType: ContentTypeFor(job.Params.Format),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ExportJobService) RecoverPendingJobs(ctx context.Context) int {
	pending, err := s.repo.ListByStatus(ctx, models.ExportStatusQueued, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued export jobs", zap.Error(err))
		return 0
	}
	recovered := 0
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
			s.logger.Warn("failed to requeue pending export job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes files and rows of jobs finished before the TTL.
func (s *ExportJobService) CleanupExpired(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	removed := 0
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Warn("export cleanup list failed", zap.Error(err))
			return removed
		}
		for _, job := range expired {
			if job.ResultURL != nil {
				if claims, err := s.exporter.ParseToken(extractToken(*job.ResultURL), true); err == nil {
					if err := s.exporter.Delete(claims.File); err != nil {
						s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
					}
				}
			}
			if err := s.repo.Delete(ctx, job.ID); err != nil {
				s.logger.Warn("export cleanup row delete failed", zap.String("job_id", job.ID), zap.Error(err))
				return removed
			}
			removed++
		}
		if len(expired) < 100 {
			break
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export filesystem cleanup failed", zap.Error(err))
	}
	return removed
}

func (s *ExportJobService) markFailed(ctx context.Context, id, msg string) {
	failed := models.ExportStatusFailed
	progress := 100
	now := s.now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
}

func toExportStatus(job *models.ExportJob) *ExportJobStatus {
	status := &ExportJobStatus{
		ID:          job.ID,
		Format:      job.Params.Format,
		Status:      job.Status,
		Progress:    job.Progress,
		DownloadURL: job.ResultURL,
		CreatedAt:   job.CreatedAt,
		FinishedAt:  job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		status.Error = job.ErrorMessage
	}
	return status
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

// NewExportWorker constructs a worker. maxRetries must match the queue's.
func NewExportWorker(repo exportJobStore, exporter exportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ExportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger, maxRetries: maxRetries, now: time.Now}
}

// Handle processes a queue job. Missing jobs and expired sessions are
// permanent failures; anything else is retried by the queue.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return jobs.Permanent(err)
		}
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	sess := models.NewSession(record.Params.Token, nil)
	result, err := w.exporter.Generate(ctx, sess, record)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionExpired) || errors.Is(err, appErrors.ErrUnauthorized) {
			err = jobs.Permanent(err)
		}
		msg := appErrors.FromError(err).Message
		if jobs.IsPermanent(err) || job.Attempt >= w.maxRetries {
			w.finish(ctx, record, models.ExportStatusFailed, nil, &msg)
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Warn("failed to mark export job queued", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
		}
		return err
	}

	url := result.URL
	noError := ""
	if err := w.finish(ctx, record, models.ExportStatusFinished, &url, &noError); err != nil {
		return err
	}
	w.logger.Info("export job finished", zap.String("job_id", job.ID), zap.Int("rows", result.Rows))
	return nil
}

// OnGiveUp is the queue hook for jobs that will not be retried.
func (w *ExportWorker) OnGiveUp(job jobs.Job, err error) {
	w.logger.Warn("export job abandoned", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
}

func (w *ExportWorker) finish(ctx context.Context, record *models.ExportJob, status models.ExportStatus, url, msg *string) error {
	progress := 100
	now := w.now().UTC()
	err := w.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{
		Status:       &status,
		Progress:     &progress,
		ResultURL:    url,
		ErrorMessage: msg,
		FinishedAt:   &now,
	})
	if err != nil {
		w.logger.Warn("failed to settle export job", zap.String("job_id", record.ID), zap.String("status", string(status)), zap.Error(err))
		return err
	}
	w.metrics.RecordExportJob(record.Params.Format, status)
	return nil
}
