package store

import (
	"context"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the stores need.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.Catalog       = (*Catalog)(nil)
	_ domain.TenantStorage = (*TenantStore)(nil)
	_ domain.JobStore      = (*RedisJobStore)(nil)
	_ domain.JobStore      = (*MemoryJobStore)(nil)
)
