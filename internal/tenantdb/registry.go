// Package tenantdb owns the process-wide cache of per-tenant connection pools.
package tenantdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Opener builds a pool for the named database. It must not block on network I/O.
type Opener func(ctx context.Context, databaseName string) (*pgxpool.Pool, error)

// ConfigOpener returns an Opener deriving each tenant pool from base, which
// supplies host, credentials and pool tuning. maxConns of zero keeps base.MaxConns.
func ConfigOpener(base *pgxpool.Config, maxConns int32) Opener {
	return func(ctx context.Context, databaseName string) (*pgxpool.Pool, error) {
		cfg := base.Copy()
		cfg.ConnConfig.Database = databaseName
		if maxConns > 0 {
			cfg.MaxConns = maxConns
		}
		return pgxpool.NewWithConfig(ctx, cfg)
	}
}

// Registry maps tenant names to connection pools. A pool is built on the first
// request for a tenant and reused afterwards. Pools are never evicted, so the
// registry grows with the number of distinct tenants served by the process.
type Registry struct {
	mu     sync.RWMutex
	pools  map[string]*pgxpool.Pool
	open   Opener
	logger *zap.Logger
}

func NewRegistry(open Opener, logger *zap.Logger) *Registry {
	return &Registry{
		pools:  make(map[string]*pgxpool.Pool),
		open:   open,
		logger: logger,
	}
}

// GetOrCreate returns the pool for tenantName, building it on a cache miss.
// Concurrent misses for the same tenant build exactly one pool.
func (r *Registry) GetOrCreate(ctx context.Context, tenantName string) (*pgxpool.Pool, error) {
	if err := domain.ValidateTenantName(tenantName); err != nil {
		return nil, err
	}
	dbName := domain.DatabaseName(tenantName)

	r.mu.RLock()
	pool, exists := r.pools[dbName]
	r.mu.RUnlock()

	if exists {
		return pool, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if pool, exists = r.pools[dbName]; exists {
		return pool, nil
	}

	pool, err := r.open(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("open pool for %s: %w", dbName, err)
	}
	r.pools[dbName] = pool

	r.logger.Info("tenant pool created",
		zap.String("tenant", tenantName),
		zap.String("database", dbName),
		zap.Int("pools", len(r.pools)),
	)
	return pool, nil
}

// Storage returns the data access layer bound to the tenant's pool.
func (r *Registry) Storage(ctx context.Context, tenantName string) (domain.TenantStorage, error) {
	pool, err := r.GetOrCreate(ctx, tenantName)
	if err != nil {
		return nil, err
	}
	return store.NewTenantStore(pool), nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// Stats snapshots every cached pool, keyed by database name.
func (r *Registry) Stats() map[string]*pgxpool.Stat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]*pgxpool.Stat, len(r.pools))
	for name, pool := range r.pools {
		stats[name] = pool.Stat()
	}
	return stats
}

// Close closes every pool. The registry must not be used afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, pool := range r.pools {
		pool.Close()
		delete(r.pools, name)
	}
}

var _ domain.StorageProvider = (*Registry)(nil)
