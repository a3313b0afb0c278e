package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/mockapi"
	"github.com/noah-isme/coursehub-client/internal/service"
	"github.com/noah-isme/coursehub-client/pkg/config"
	"github.com/noah-isme/coursehub-client/pkg/logger"
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store := mockapi.NewStore()
	if cfg.MockAPI.SeedFile != "" {
		store, err = mockapi.LoadSeedFile(cfg.MockAPI.SeedFile)
		if err != nil {
			logr.Fatal("failed to load seed file", zap.String("path", cfg.MockAPI.SeedFile), zap.Error(err))
		}
	}

	opts := mockapi.Options{
		UniqueEnrollments: cfg.MockAPI.UniqueEnrollments,
		AllowedOrigins:    cfg.MockAPI.AllowedOrigins,
		Logger:            logr,
	}
	if cfg.Metrics.Enabled {
		metrics := service.NewMetricsService()
		opts.Observer = metrics
		opts.MetricsHandler = metrics.Handler()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addrs := []string{fmt.Sprintf(":%d", cfg.MockAPI.Port)}
	if cfg.MockAPI.UsersPort > 0 && cfg.MockAPI.UsersPort != cfg.MockAPI.Port {
		addrs = append(addrs, fmt.Sprintf(":%d", cfg.MockAPI.UsersPort))
	}
	logr.Sugar().Infow("mock api starting", "addrs", addrs, "seed", cfg.MockAPI.SeedFile, "unique_enrollments", cfg.MockAPI.UniqueEnrollments)
	if err := mockapi.New(store, opts).Run(ctx, addrs...); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
