// Copyright 2026 The HTPI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/htpi/tenant-service/internal/access"
	"github.com/htpi/tenant-service/internal/audit"
	"github.com/htpi/tenant-service/internal/bootstrap"
	"github.com/htpi/tenant-service/internal/config"
	"github.com/htpi/tenant-service/internal/observability/logger"
	"github.com/htpi/tenant-service/internal/observability/metrics"
	"github.com/htpi/tenant-service/internal/observability/tracing"
	"github.com/htpi/tenant-service/internal/store/memory"
	"github.com/htpi/tenant-service/internal/store/postgres"
	"github.com/htpi/tenant-service/internal/tenant"
	transportHTTP "github.com/htpi/tenant-service/internal/transport/http"
	transportNATS "github.com/htpi/tenant-service/internal/transport/nats"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting htpi tenant service")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
		os.Exit(1)
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
		os.Exit(1)
	}

	// Initialize tenant repository
	var repo tenant.Repository
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := postgres.New(ctx, postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			Database:     cfg.Database.Database,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			slog.Error("failed to connect to database", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("connected to database")
		repo = postgres.NewTenantRepository(db)
	default:
		repo = memory.New()
	}

	// Initialize access index and services
	auditLogger := audit.NewSlogLogger()
	accessIndex := access.NewIndex(repo)
	tenantService := tenant.NewService(repo, auditLogger)

	// Seed the directory and the grants
	doc, err := bootstrap.Load(cfg.Store.BootstrapFile)
	if err != nil {
		slog.Error("failed to load bootstrap document", logger.Error(err))
		os.Exit(1)
	}
	if err := bootstrap.Apply(ctx, doc, repo, accessIndex, auditLogger); err != nil {
		slog.Error("bootstrap failed", logger.Error(err))
		os.Exit(1)
	}

	// Connect to the broker; this is the only fatal runtime dependency.
	nc, err := transportNATS.Connect(transportNATS.ConnConfig{
		URL:      cfg.NATS.URL,
		User:     cfg.NATS.User,
		Password: cfg.NATS.Password,
		Name:     cfg.NATS.Name,
	})
	if err != nil {
		slog.Error("failed to connect to broker", logger.Error(err))
		os.Exit(1)
	}
	defer nc.Close()

	// Register subjects
	rateLimiter := transportNATS.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	router := transportNATS.NewRouter(nc, tenantService, accessIndex, auditLogger, meter, rateLimiter)
	if err := router.Subscribe(nc); err != nil {
		slog.Error("failed to subscribe", logger.Error(err))
		os.Exit(1)
	}

	// Ops endpoint
	opsServer := &http.Server{
		Addr:         cfg.Ops.Addr,
		Handler:      transportHTTP.NewRouter(nc),
		ReadTimeout:  cfg.Ops.ReadTimeout,
		WriteTimeout: cfg.Ops.WriteTimeout,
	}

	go func() {
		slog.Info("starting ops server", logger.Component("server"), logger.String("addr", cfg.Ops.Addr))
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ops server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	slog.Info("tenant service is running")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	// Let in-flight handlers publish their replies before closing.
	if err := nc.Drain(); err != nil {
		slog.Error("broker drain error", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("ops server shutdown error", logger.Error(err))
	}

	slog.Info("tenant service stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
