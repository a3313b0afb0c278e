package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/cli"
	"github.com/noah-isme/coursehub-client/internal/models"
	"github.com/noah-isme/coursehub-client/internal/repository"
	"github.com/noah-isme/coursehub-client/internal/service"
	"github.com/noah-isme/coursehub-client/pkg/config"
	"github.com/noah-isme/coursehub-client/pkg/httpclient"
	"github.com/noah-isme/coursehub-client/pkg/logger"
	"github.com/noah-isme/coursehub-client/pkg/storage"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := storage.Open(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open session storage", zap.String("driver", cfg.Session.Driver), zap.Error(err))
	}
	defer closeKV() //nolint:errcheck

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	usersOpts, catalogOpts := httpclient.FromConfig(cfg.API, logr)
	repos := repository.New(httpclient.New(usersOpts), httpclient.New(catalogOpts), logr, metrics)
	sessions := repository.NewSessionRepository(kv, logr)

	validate := validation.New()
	auth := service.NewAuthService(repos.Users, sessions, validate, logr, metrics, service.AuthConfig{BcryptCost: cfg.Auth.BcryptCost})
	enrollments := service.NewEnrollmentService(repos.Enrollments, repos.Courses, auth, validate, logr, metrics, service.EnrollmentConfig{
		InitialStatus: models.EnrollmentStatus(cfg.Enrollment.InitialStatus),
		RecentLimit:   cfg.Enrollment.RecentLimit,
	})

	exportStorage, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export directory", zap.Error(err))
	}

	app := cli.NewApp(cli.Deps{
		Auth:        auth,
		Courses:     service.NewCourseService(repos.Courses),
		Enrollments: enrollments,
		Contacts:    service.NewContactService(repos.Contacts, validate, logr),
		Dashboard:   service.NewDashboardService(auth, enrollments, cfg.Enrollment.RecentLimit),
		Export:      service.NewExportService(auth, enrollments, exportStorage, logr, nil, nil),
		Metrics:     metrics,
		Logger:      logr,
	}, os.Stdin, os.Stdout)

	logr.Debug("client starting",
		zap.String("users_api", cfg.API.UsersBaseURL),
		zap.String("catalog_api", cfg.API.CatalogBaseURL),
		zap.String("session_driver", cfg.Session.Driver))

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logr.Error("repl stopped", zap.Error(err))
	}
}
