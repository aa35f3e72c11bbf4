package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/repository"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/jobs"
)

type exportJobStoreStub struct {
	mu      sync.Mutex
	jobs    map[string]*models.ExportJob
	seq     int
	deleted []string
}

func newExportJobStoreStub() *exportJobStoreStub {
	return &exportJobStoreStub{jobs: make(map[string]*models.ExportJob)}
}

func (s *exportJobStoreStub) Create(_ context.Context, job *models.ExportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	job.ID = fmt.Sprintf("job-%d", s.seq)
	job.CreatedAt = time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

func (s *exportJobStoreStub) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	clone := *job
	return &clone, nil
}

func (s *exportJobStoreStub) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return appErrors.ErrNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportJobStoreStub) ListByStatus(_ context.Context, status models.ExportStatus, _ int) ([]models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.Status == status {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportJobStoreStub) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportJobStoreStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type dispatcherStub struct {
	enqueued []jobs.Job
	err      error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.enqueued = append(d.enqueued, job)
	return nil
}

type generatorStub struct {
	err    error
	result *ExportResult
	calls  int
}

func (g *generatorStub) Generate(context.Context, *models.Session, *models.ExportJob) (*ExportResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func newTestExportJobService(t *testing.T, enabled bool) (*ExportJobService, *exportJobStoreStub, *dispatcherStub, *ExportService) {
	t.Helper()
	exporter, _ := newTestExportService(t, &eventBackendStub{events: sampleEvents()}, time.Hour)
	repo := newExportJobStoreStub()
	queue := &dispatcherStub{}
	svc := NewExportJobService(repo, queue, exporter, nil, ExportJobServiceConfig{Enabled: enabled, ResultTTL: time.Hour})
	return svc, repo, queue, exporter
}

func TestExportJobServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newTestExportJobService(t, true)

	status, err := svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "CSV", Status: "SCHEDULED", SortKey: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", status.ID)
	assert.Equal(t, models.ExportFormatCSV, status.Format)
	assert.Equal(t, models.ExportStatusQueued, status.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, exportJobType, queue.enqueued[0].Type)

	stored, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "token", stored.Params.Token)
	assert.Equal(t, "42", stored.CreatedBy)
}

func TestExportJobServiceCreateJobRejects(t *testing.T) {
	disabled, _, _, _ := newTestExportJobService(t, false)
	_, err := disabled.CreateJob(context.Background(), testSession(), ExportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrFeatureDisabled)

	svc, _, queue, _ := newTestExportJobService(t, true)
	_, err = svc.CreateJob(context.Background(), &models.Session{}, ExportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "format")

	_, err = svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "ics", Timezone: "Nowhere/Land"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "timezone")
	assert.Empty(t, queue.enqueued)
}

func TestExportJobServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	svc, repo, queue, _ := newTestExportJobService(t, true)
	queue.err = errors.New("queue stopped")

	_, err := svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	stored, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
}

func TestExportJobServiceGetStatusHidesOtherUsersJobs(t *testing.T) {
	svc, _, _, _ := newTestExportJobService(t, true)
	created, err := svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "csv"})
	require.NoError(t, err)

	other := &models.Session{Token: "t2", User: &models.User{ID: "7"}}
	_, err = svc.GetStatus(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	claimsOnly := models.NewSession("forged", &models.TokenClaims{UserID: "42", Role: models.RoleAdmin})
	_, err = svc.GetStatus(context.Background(), claimsOnly, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	admin := &models.Session{Token: "t3", User: &models.User{ID: "1", Role: models.RoleAdmin}}
	status, err := svc.GetStatus(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, status.ID)
}

func TestExportWorkerGeneratesAndResolvesDownload(t *testing.T) {
	svc, repo, _, exporter := newTestExportJobService(t, true)
	metrics := NewMetricsService()
	worker := NewExportWorker(repo, exporter, metrics, 2, nil)

	created, err := svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: created.ID}))

	status, err := svc.GetStatus(context.Background(), testSession(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.DownloadURL)
	assert.Nil(t, status.Error)

	download, err := svc.ResolveDownload(context.Background(), extractToken(*status.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, ContentTypeFor(models.ExportFormatCSV), download.ContentType)
	assert.Contains(t, download.Filename, created.ID)

	_, err = svc.ResolveDownload(context.Background(), "garbage")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestExportWorkerRetryThenFail(t *testing.T) {
	repo := newExportJobStoreStub()
	job := &models.ExportJob{Params: models.ExportJobParams{Format: models.ExportFormatPDF, Token: "token"}, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	gen := &generatorStub{err: appErrors.Clone(appErrors.ErrUpstreamUnavailable, "backend down")}
	worker := NewExportWorker(repo, gen, nil, 1, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0})
	require.Error(t, err)
	assert.False(t, jobs.IsPermanent(err))
	stored, _ := repo.GetByID(context.Background(), job.ID)
	assert.Equal(t, models.ExportStatusQueued, stored.Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.Error(t, err)
	stored, _ = repo.GetByID(context.Background(), job.ID)
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "backend down", *stored.ErrorMessage)
}

func TestExportWorkerPermanentFailures(t *testing.T) {
	repo := newExportJobStoreStub()
	worker := NewExportWorker(repo, &generatorStub{err: appErrors.ErrSessionExpired}, nil, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "missing"})
	assert.True(t, jobs.IsPermanent(err))

	job := &models.ExportJob{Params: models.ExportJobParams{Format: models.ExportFormatCSV, Token: "token"}}
	require.NoError(t, repo.Create(context.Background(), job))
	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID})
	assert.True(t, jobs.IsPermanent(err))
	stored, _ := repo.GetByID(context.Background(), job.ID)
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
}

func TestExportJobServiceRecoverAndCleanup(t *testing.T) {
	svc, repo, queue, exporter := newTestExportJobService(t, true)
	worker := NewExportWorker(repo, exporter, nil, 0, nil)

	first, err := svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "csv"})
	require.NoError(t, err)
	_, err = svc.CreateJob(context.Background(), testSession(), ExportRequest{Format: "ics"})
	require.NoError(t, err)
	queue.enqueued = nil

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: first.ID}))
	assert.Equal(t, 1, svc.RecoverPendingJobs(context.Background()))
	assert.Len(t, queue.enqueued, 1)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, svc.CleanupExpired(context.Background()))
	assert.Equal(t, []string{first.ID}, repo.deleted)
	_, err = repo.GetByID(context.Background(), first.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
