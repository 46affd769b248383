package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"doctools/internal/config"
	"doctools/internal/database"
	"doctools/internal/database/migration"
	"doctools/internal/events"
	"doctools/internal/filestore"
	handlers "doctools/internal/http/handler"
	"doctools/internal/http/middleware"
	"doctools/internal/logging"
	apptracing "doctools/internal/otel"
	"doctools/internal/pdfunlock"
	"doctools/internal/repository"
	"doctools/internal/repository/postgres"
	"doctools/internal/scan"
	"doctools/internal/service"
	"doctools/internal/storage"
	"doctools/internal/unminify"
)

// multipartSlack covers multipart framing and the password field on top of the file itself.
const multipartSlack = 1 << 20

// @title doctools API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.Location(), logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := apptracing.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	if objStore, ok := store.(*filestore.ObjectStore); ok {
		purged, err := objStore.PurgeOrphans(ctx)
		if err != nil {
			logger.Warn("orphan_purge_failed", slog.Any("error", err))
		}
		logger.Info("orphan_purge_completed", slog.Int("purged", purged))
	}
	storeMetrics, err := filestore.NewMetrics(reg, store)
	if err != nil {
		return fmt.Errorf("register store metrics: %w", err)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var health []handlers.Pinger

	scanner := scan.Scanner(scan.NoopScanner{})
	if cfg.ClamAV.Address != "" {
		clamd := scan.NewClamdScanner(cfg.ClamAV.Address, logger)
		scanner = clamd
		health = append(health, handlers.PingFunc(func(context.Context) error { return clamd.Ping() }))
		logger.Info("upload_scanning_enabled", slog.String("address", cfg.ClamAV.Address))
	}

	var activities repository.ActivityRepository = repository.NoopActivityRepository{}
	if cfg.Database.Enabled() {
		db, err := openDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.RegisterMetrics(reg, db, cfg.Database.Name); err != nil {
			return fmt.Errorf("register db metrics: %w", err)
		}
		activities = postgres.NewActivityPostgres(db)
		health = append(health, db)
	}

	reaper := filestore.NewReaper(store, cfg.Retention.SweepInterval(), cfg.Retention.Retention(), logger,
		filestore.WithMetrics(storeMetrics),
		filestore.WithEvictHook(publishEvictions(publisher, logger)),
	)
	go reaper.Run(ctx)

	var unminifyOpts []unminify.Option
	if cfg.Unminify.CacheSize > 0 {
		cache, err := unminify.NewCache(cfg.Unminify.CacheSize, time.Duration(cfg.Unminify.CacheTTLSec)*time.Second, reg)
		if err != nil {
			return fmt.Errorf("init unminify cache: %w", err)
		}
		unminifyOpts = append(unminifyOpts, unminify.WithCache(cache))
	}

	passwordSvc := service.NewPasswordService(pdfunlock.NewPdfcpuCodec(), store, cfg.Upload.MaxBytes,
		service.WithScanner(scanner),
		service.WithActivityLog(activities),
		service.WithPublisher(publisher),
		service.WithLogger(logger),
	)
	unminifySvc := service.NewUnminifyService(unminify.New(unminifyOpts...), activities, logger)
	activitySvc := service.NewActivityService(activities)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "doctools",
		BodyLimit:             int(cfg.Upload.MaxBytes) + multipartSlack,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(logger),
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Deps{
		Passwords:     passwordSvc,
		Unminify:      unminifySvc,
		Activities:    activitySvc,
		Health:        health,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	go func() {
		<-ctx.Done()
		logger.Info("server_stopping")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server_shutdown_failed", slog.Any("error", err))
		}
	}()

	logger.Info("server_started",
		slog.String("port", cfg.Port),
		slog.String("store", cfg.Store.Backend),
		slog.Duration("retention", cfg.Retention.Retention()),
	)
	return app.Listen(":" + cfg.Port)
}

func newStore(cfg *config.AppConfig) (filestore.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return filestore.NewMemoryStore(), nil
	case "minio":
		objects, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		return filestore.NewObjectStore(objects), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
}

// publishEvictions announces reaped files. A failed publish is logged and never stops the sweep.
func publishEvictions(publisher events.Publisher, logger *slog.Logger) filestore.EvictFunc {
	return func(ctx context.Context, ids []string) {
		now := time.Now().UTC()
		for _, id := range ids {
			err := publisher.Publish(ctx, events.PDFEvicted, events.FileEvicted{FileID: id, OccurredAt: now})
			if err != nil {
				logger.Warn("event_publish_failed",
					slog.String("event", events.PDFEvicted),
					slog.String("file_id", id),
					slog.Any("error", err),
				)
			}
		}
	}
}

func newPublisher(cfg *config.AppConfig, logger *slog.Logger) (events.Publisher, error) {
	if cfg.NATS.URL == "" {
		return events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return pub, nil
}

func openDatabase(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate database: %w", err), db.Close())
	}
	return db, nil
}
