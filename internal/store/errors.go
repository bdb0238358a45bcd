package store

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = fmt.Errorf("record %w", domain.ErrNotFound)
	ErrConflict = fmt.Errorf("record %w", domain.ErrConflict)
)

const (
	codeUniqueViolation   = "23505"
	codeDuplicateDatabase = "42P04"
	codeUndefinedTable    = "42P01"
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation, codeDuplicateDatabase:
		return ErrConflict
	case codeUndefinedTable:
		// A tenant whose provisioning stopped before the schema has no rows.
		return ErrNotFound
	}
	return err
}
