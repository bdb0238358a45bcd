package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TenantStoreTestSuite struct {
	suite.Suite
	mock  pgxmock.PgxPoolIface
	store *TenantStore
	ctx   context.Context
	now   time.Time
}

func (s *TenantStoreTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.store = NewTenantStore(mock)
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func (s *TenantStoreTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestTenantStoreTestSuite(t *testing.T) {
	suite.Run(t, new(TenantStoreTestSuite))
}

func (s *TenantStoreTestSuite) TestInitSchema_RunsEveryStatement() {
	for _, stmt := range schemaStatements {
		s.mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	assert.NoError(s.T(), s.store.InitSchema(s.ctx))
}

func (s *TenantStoreTestSuite) TestInitSchema_StopsOnError() {
	s.mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnError(errors.New("permission denied"))

	err := s.store.InitSchema(s.ctx)
	assert.EqualError(s.T(), err, "permission denied")
}

func (s *TenantStoreTestSuite) TestCreateUser_Commits() {
	u := &domain.User{Email: "admin@acme.io", PasswordHash: "hash", Role: domain.RoleAdmin}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("admin@acme.io", "hash", "admin").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), s.now))
	s.mock.ExpectCommit()
	// pgx.BeginFunc always rolls back on exit; after commit it is a no-op.
	s.mock.ExpectRollback()

	require.NoError(s.T(), s.store.CreateUser(s.ctx, u))
	assert.Equal(s.T(), int64(7), u.ID)
	assert.Equal(s.T(), s.now, u.CreatedAt)
}

func (s *TenantStoreTestSuite) TestCreateUser_DuplicateEmailRollsBack() {
	u := &domain.User{Email: "admin@acme.io", PasswordHash: "hash", Role: domain.RoleUser}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("admin@acme.io", "hash", "user").
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation})
	s.mock.ExpectRollback()
	s.mock.ExpectRollback()

	err := s.store.CreateUser(s.ctx, u)
	assert.ErrorIs(s.T(), err, ErrConflict)
	assert.ErrorIs(s.T(), err, domain.ErrConflict)
	assert.Zero(s.T(), u.ID)
}

func (s *TenantStoreTestSuite) TestGetUserByEmail() {
	s.mock.ExpectQuery(`SELECT id, email, password, role, created_at FROM users WHERE email = \$1`).
		WithArgs("admin@acme.io").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
			AddRow(int64(1), "admin@acme.io", "hash", "admin", s.now))

	u, err := s.store.GetUserByEmail(s.ctx, "admin@acme.io")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.RoleAdmin, u.Role)
	assert.Equal(s.T(), "hash", u.PasswordHash)
}

func (s *TenantStoreTestSuite) TestGetUserByEmail_NotFound() {
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@acme.io").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password", "role", "created_at"}))

	_, err := s.store.GetUserByEmail(s.ctx, "ghost@acme.io")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *TenantStoreTestSuite) TestGetUserByEmail_MissingTableIsNotFound() {
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("admin@acme.io").
		WillReturnError(&pgconn.PgError{Code: codeUndefinedTable})

	_, err := s.store.GetUserByEmail(s.ctx, "admin@acme.io")
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
}

func (s *TenantStoreTestSuite) TestCreateTenant_Commits() {
	tenant := &domain.Tenant{
		Name: "acme", AdminUserID: 1, Sector: "retail", Type: "private",
		PhoneNumber: "555-0100", Address: "1 Main St",
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO organizations`).
		WithArgs("acme", int64(1), "retail", "private", "555-0100", "1 Main St").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), s.now))
	s.mock.ExpectCommit()
	s.mock.ExpectRollback()

	require.NoError(s.T(), s.store.CreateTenant(s.ctx, tenant))
	assert.Equal(s.T(), int64(3), tenant.ID)
}

func (s *TenantStoreTestSuite) TestCreateTenant_FailureRollsBack() {
	tenant := &domain.Tenant{Name: "acme", AdminUserID: 99}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO organizations`).
		WithArgs("acme", int64(99), "", "", "", "").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	s.mock.ExpectRollback()
	s.mock.ExpectRollback()

	err := s.store.CreateTenant(s.ctx, tenant)
	var pgErr *pgconn.PgError
	assert.ErrorAs(s.T(), err, &pgErr)
}

func (s *TenantStoreTestSuite) TestGetTenantByAdminUserID() {
	s.mock.ExpectQuery(`FROM organizations WHERE admin_user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "admin_user_id", "sector", "type", "phone_number", "address", "created_at"}).
			AddRow(int64(3), "acme", int64(1), "retail", "private", "555-0100", "1 Main St", s.now))

	tenant, err := s.store.GetTenantByAdminUserID(s.ctx, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "acme", tenant.Name)
	assert.Equal(s.T(), int64(1), tenant.AdminUserID)
}

func (s *TenantStoreTestSuite) TestGetTenantByName_NotFound() {
	s.mock.ExpectQuery(`FROM organizations WHERE name = \$1`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "admin_user_id", "sector", "type", "phone_number", "address", "created_at"}))

	_, err := s.store.GetTenantByName(s.ctx, "nope")
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
}
