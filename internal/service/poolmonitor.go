package service

import (
	"time"

	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultPoolStatsInterval = 30 * time.Second

// PoolSource is satisfied by *tenantdb.Registry.
type PoolSource interface {
	Stats() map[string]*pgxpool.Stat
}

// PoolMonitor periodically publishes tenant pool statistics.
type PoolMonitor struct {
	scheduler gocron.Scheduler
	pools     PoolSource
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewPoolMonitor(pools PoolSource, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) (*PoolMonitor, error) {
	if interval <= 0 {
		interval = defaultPoolStatsInterval
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	pm := &PoolMonitor{
		scheduler: scheduler,
		pools:     pools,
		metrics:   m,
		logger:    logger,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(pm.report),
		gocron.WithName("tenant-pool-stats"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (pm *PoolMonitor) Start() {
	pm.scheduler.Start()
	pm.logger.Info("tenant pool monitor started")
}

func (pm *PoolMonitor) Stop() {
	if err := pm.scheduler.Shutdown(); err != nil {
		pm.logger.Warn("tenant pool monitor shutdown failed", zap.Error(err))
		return
	}
	pm.logger.Info("tenant pool monitor stopped")
}

func (pm *PoolMonitor) report() {
	stats := pm.pools.Stats()
	pm.metrics.SetTenantPools(len(stats))
	for database, st := range stats {
		pm.metrics.SetTenantPoolConns(database, st.AcquiredConns(), st.IdleConns(), st.TotalConns())
	}
	pm.logger.Debug("tenant pool stats published", zap.Int("pools", len(stats)))
}
