package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/api"
	"github.com/Harshitk-cp/orgdb/internal/auth"
	"github.com/Harshitk-cp/orgdb/internal/buildconfig"
	"github.com/Harshitk-cp/orgdb/internal/config"
	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/Harshitk-cp/orgdb/internal/notify"
	"github.com/Harshitk-cp/orgdb/internal/service"
	"github.com/Harshitk-cp/orgdb/internal/store"
	"github.com/Harshitk-cp/orgdb/internal/tenantdb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	secret := config.JWTSecret()
	if secret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// The maintenance pool issues CREATE DATABASE and catalog lookups.
	// Tenant pools reuse its connection settings with a different database.
	poolCfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Fatal("invalid DATABASE_URL", zap.Error(err))
	}
	adminPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer adminPool.Close()

	if err := adminPool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database", zap.String("database", poolCfg.ConnConfig.Database))

	registry := tenantdb.NewRegistry(tenantdb.ConfigOpener(poolCfg, config.TenantPoolMaxConns()), logger)
	defer registry.Close()

	jobs, closeJobs := newJobStore(ctx, logger)
	defer closeJobs()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	creds := auth.NewCredentials(auth.CredentialsConfig{
		Secret:      secret,
		BcryptCost:  config.BcryptCost(),
		TokenTTL:    config.AccessTokenTTL(),
		Concurrency: config.HashConcurrency(),
	}, m)

	catalog := store.NewCatalog(adminPool)
	workflow := service.NewProvisioningWorkflow(catalog, registry, creds, notify.NewLogNotifier(logger), jobs, m, logger)
	provisioner := service.NewProvisioner(workflow, catalog, jobs, logger)

	monitor, err := service.NewPoolMonitor(registry, m, logger, config.PoolStatsInterval())
	if err != nil {
		logger.Fatal("failed to create pool monitor", zap.Error(err))
	}
	monitor.Start()

	router := api.NewRouter(ctx, api.Deps{
		AdminDB:     adminPool,
		Provisioner: provisioner,
		Orgs:        service.NewOrganizationService(registry, creds, logger),
		Auth:        service.NewAuthService(catalog, registry, creds, creds, logger),
		Resolver:    auth.NewResolver(creds),
		Metrics:     m,
		Gatherer:    promRegistry,
		Logger:      logger,
	})

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("version", buildconfig.Version()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	monitor.Stop()

	// Provisioning runs have no timeout; let in-flight ones finish before
	// pools are closed.
	logger.Info("waiting for in-flight provisioning")
	provisioner.Wait()

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

// newJobStore keeps provisioning jobs in Redis when REDIS_ADDR is set so
// status survives restarts; otherwise they live in process memory.
func newJobStore(ctx context.Context, logger *zap.Logger) (domain.JobStore, func()) {
	addr := config.RedisAddr()
	if addr == "" {
		logger.Info("REDIS_ADDR not set, keeping provisioning jobs in memory")
		return store.NewMemoryJobStore(config.JobTTL()), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
		DB:       config.RedisDB(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.String("addr", addr), zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", addr))

	return store.NewRedisJobStore(client, config.JobTTL()), func() { _ = client.Close() }
}
