package store

import (
	"context"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/jackc/pgx/v5"
)

// schemaStatements create the tables every tenant database carries.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		role       TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		admin_user_id BIGINT NOT NULL REFERENCES users (id),
		sector        TEXT NOT NULL DEFAULT '',
		type          TEXT NOT NULL DEFAULT '',
		phone_number  TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS organizations_admin_user_id_idx ON organizations (admin_user_id)`,
}

// TenantStore reads and writes the users and organizations tables of one tenant database.
type TenantStore struct {
	db DB
}

func NewTenantStore(db DB) *TenantStore {
	return &TenantStore{db: db}
}

// InitSchema creates any missing tables. It is safe to run repeatedly.
func (s *TenantStore) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateUser inserts u in its own transaction. A failed insert is rolled back.
func (s *TenantStore) CreateUser(ctx context.Context, u *domain.User) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO users (email, password, role) VALUES ($1, $2, $3)
			 RETURNING id, created_at`,
			u.Email, u.PasswordHash, string(u.Role),
		).Scan(&u.ID, &u.CreatedAt)
	})
	return translate(err)
}

func (s *TenantStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx,
		`SELECT id, email, password, role, created_at FROM users WHERE email = $1`, email)
}

func (s *TenantStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx,
		`SELECT id, email, password, role, created_at FROM users WHERE id = $1`, id)
}

func (s *TenantStore) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var role string
	err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// CreateTenant inserts the organization row in its own transaction.
func (s *TenantStore) CreateTenant(ctx context.Context, t *domain.Tenant) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO organizations (name, admin_user_id, sector, type, phone_number, address)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at`,
			t.Name, t.AdminUserID, t.Sector, t.Type, t.PhoneNumber, t.Address,
		).Scan(&t.ID, &t.CreatedAt)
	})
	return translate(err)
}

func (s *TenantStore) GetTenantByName(ctx context.Context, name string) (*domain.Tenant, error) {
	return s.getTenant(ctx,
		`SELECT id, name, admin_user_id, sector, type, phone_number, address, created_at
		 FROM organizations WHERE name = $1`, name)
}

// GetTenantByAdminUserID finds the organization administered by userID.
func (s *TenantStore) GetTenantByAdminUserID(ctx context.Context, userID int64) (*domain.Tenant, error) {
	return s.getTenant(ctx,
		`SELECT id, name, admin_user_id, sector, type, phone_number, address, created_at
		 FROM organizations WHERE admin_user_id = $1`, userID)
}

func (s *TenantStore) getTenant(ctx context.Context, query string, arg any) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.Name, &t.AdminUserID, &t.Sector, &t.Type, &t.PhoneNumber, &t.Address, &t.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}
