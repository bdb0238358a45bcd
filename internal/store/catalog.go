package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Catalog issues database-level statements against the maintenance database.
type Catalog struct {
	db DB
}

func NewCatalog(db DB) *Catalog {
	return &Catalog{db: db}
}

// CreateDatabase runs CREATE DATABASE outside any transaction.
// An existing database is reported as ErrConflict.
func (c *Catalog) CreateDatabase(ctx context.Context, name string) error {
	_, err := c.db.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	return translate(err)
}

func (c *Catalog) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := c.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
