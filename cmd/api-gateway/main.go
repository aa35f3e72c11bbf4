package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/weather-events-bff/api/swagger"
	"github.com/noah-isme/weather-events-bff/internal/handler"
	internalmiddleware "github.com/noah-isme/weather-events-bff/internal/middleware"
	"github.com/noah-isme/weather-events-bff/internal/repository"
	"github.com/noah-isme/weather-events-bff/internal/service"
	"github.com/noah-isme/weather-events-bff/internal/upstream"
	"github.com/noah-isme/weather-events-bff/pkg/cache"
	"github.com/noah-isme/weather-events-bff/pkg/config"
	"github.com/noah-isme/weather-events-bff/pkg/database"
	"github.com/noah-isme/weather-events-bff/pkg/export"
	"github.com/noah-isme/weather-events-bff/pkg/jobs"
	"github.com/noah-isme/weather-events-bff/pkg/logger"
	corsmiddleware "github.com/noah-isme/weather-events-bff/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/weather-events-bff/pkg/middleware/requestid"
	"github.com/noah-isme/weather-events-bff/pkg/storage"
)

// @title Weather Events BFF
// @version 1.0.0
// @description Backend-for-frontend for the weather and events dashboard.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	readiness := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without response cache", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
		redisRepo := repository.NewCacheRepository(redisClient, logr)
		readiness["cache"] = redisRepo.Ping
		cacheRepo = redisRepo
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Weather.CacheTTL, logr, cacheRepo != nil)

	backend := upstream.New(upstream.Options{
		BaseURL:  cfg.Upstream.BaseURL,
		Timeout:  cfg.Upstream.Timeout,
		Logger:   logr,
		Observer: metricsSvc,
	})

	historyRepo := repository.NewSearchHistoryRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	authSvc := service.NewAuthService(backend, cacheSvc, cfg.Session.IdentityTTL, logr)
	userSvc := service.NewUserService(backend, historyRepo, logr)
	eventSvc := service.NewEventService(backend, cfg.Calendar.DefaultTimezone, logr)
	checkSvc := service.NewCheckService(backend, cfg.Checks.DebounceWindow, logr)
	locationSvc := service.NewLocationService(service.LocationServiceParams{
		Backend:      backend,
		History:      historyRepo,
		HistoryLimit: cfg.Locations.SearchHistoryLimit,
		Logger:       logr,
	})

	refresher := service.NewWeatherRefresher(backend, cfg.Weather.RefreshSchedule, logr)
	if err := refresher.Start(ctx); err != nil {
		logr.Fatal("failed to start weather refresher", zap.Error(err))
	}
	weatherSvc := service.NewWeatherService(service.WeatherServiceParams{
		Backend:   backend,
		Cache:     cacheSvc,
		CacheTTL:  cfg.Weather.CacheTTL,
		Refresher: refresher,
		Logger:    logr,
	})

	analyticsSvc := service.NewAnalyticsService(service.AnalyticsServiceParams{
		Backend:  backend,
		Cache:    cacheSvc,
		Metrics:  metricsSvc,
		CacheTTL: cfg.Analytics.CacheTTL,
		Enabled:  cfg.Analytics.Enabled,
		Logger:   logr,
	})

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Analytics:   analyticsSvc,
		Events:      eventSvc,
		Weather:     weatherSvc,
		Concurrency: cfg.Dashboard.Concurrency,
		Logger:      logr,
	})

	exportJobs, exportQueue := newExportPipeline(ctx, cfg, logr, backend, exportJobRepo, metricsSvc)
	if exportQueue != nil {
		defer exportQueue.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	handler.Register(r, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Users:     handler.NewUserHandler(userSvc),
		Events:    handler.NewEventHandler(eventSvc, checkSvc),
		Calendar:  handler.NewCalendarHandler(eventSvc),
		Locations: handler.NewLocationHandler(locationSvc),
		Weather:   handler.NewWeatherHandler(weatherSvc),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Exports:   handler.NewExportHandler(exportJobs),
		Metrics:   handler.NewMetricsHandler(metricsSvc, readiness),
	}, handler.RouterConfig{
		APIPrefix: cfg.APIPrefix,
		Sessions:  authSvc,
		Logger:    logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	<-refresher.Stop().Done()
}

// newExportPipeline wires the export generator, worker queue and job service.
// The queue is nil when exports are disabled; the job service then rejects
// new jobs with ErrFeatureDisabled.
func newExportPipeline(ctx context.Context, cfg *config.Config, logr *zap.Logger, backend *upstream.Client, repo *repository.ExportJobRepository, metrics *service.MetricsService) (*service.ExportJobService, *jobs.Queue) {
	jobCfg := service.ExportJobServiceConfig{
		Enabled:         cfg.Exports.Enabled,
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	}
	if !cfg.Exports.Enabled {
		return service.NewExportJobService(repo, nil, nil, logr, jobCfg), nil
	}

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exporter := service.NewExportService(service.ExportServiceParams{
		Events:  backend,
		Storage: store,
		Signer:  storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		CSV:     &export.CSVExporter{ExcelBOM: cfg.Exports.CSVExcelBOM},
		PDF:     export.NewPDFExporter(),
		ICS:     export.NewICSExporter("-//weather-events-bff//events//EN"),
		Config: service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		},
		Logger: logr,
	})

	worker := service.NewExportWorker(repo, exporter, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("event-exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
		OnGiveUp:   worker.OnGiveUp,
	})
	queue.Start(ctx)

	svc := service.NewExportJobService(repo, queue, exporter, logr, jobCfg)
	if recovered := svc.RecoverPendingJobs(ctx); recovered > 0 {
		logr.Info("requeued pending export jobs", zap.Int("count", recovered))
	}
	svc.StartCleanup(ctx)
	return svc, queue
}
