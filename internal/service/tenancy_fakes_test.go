package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/auth"
	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/Harshitk-cp/orgdb/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeCatalog tracks created databases in memory.
type fakeCatalog struct {
	mu         sync.Mutex
	databases  map[string]bool
	createErr  error
	existsErr  error
	skipCreate bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{databases: make(map[string]bool)}
}

func (c *fakeCatalog) CreateDatabase(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return c.createErr
	}
	if c.databases[name] {
		return store.ErrConflict
	}
	if !c.skipCreate {
		c.databases[name] = true
	}
	return nil
}

func (c *fakeCatalog) DatabaseExists(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.existsErr != nil {
		return false, c.existsErr
	}
	return c.databases[name], nil
}

func (c *fakeCatalog) has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.databases[name]
}

// memStorage implements domain.TenantStorage for one tenant.
type memStorage struct {
	mu              sync.Mutex
	schemaReady     bool
	nextID          int64
	users           []domain.User
	tenants         []domain.Tenant
	initErr         error
	createUserErr   error
	createTenantErr error
}

var errNoSchema = errors.New("relation does not exist")

func (s *memStorage) InitSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initErr != nil {
		return s.initErr
	}
	s.schemaReady = true
	return nil
}

func (s *memStorage) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createUserErr != nil {
		return s.createUserErr
	}
	if !s.schemaReady {
		return errNoSchema
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrConflict
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now()
	s.users = append(s.users, *u)
	return nil
}

func (s *memStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStorage) CreateTenant(ctx context.Context, t *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createTenantErr != nil {
		return s.createTenantErr
	}
	if !s.schemaReady {
		return errNoSchema
	}
	s.nextID++
	t.ID = s.nextID
	s.tenants = append(s.tenants, *t)
	return nil
}

func (s *memStorage) GetTenantByName(ctx context.Context, name string) (*domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStorage) GetTenantByAdminUserID(ctx context.Context, userID int64) (*domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.AdminUserID == userID {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStorage) counts() (users, tenants int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.tenants)
}

// fakeProvider hands out one memStorage per tenant name.
type fakeProvider struct {
	mu       sync.Mutex
	storages map[string]*memStorage
	calls    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{storages: make(map[string]*memStorage)}
}

func (p *fakeProvider) Storage(ctx context.Context, tenantName string) (domain.TenantStorage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	s, ok := p.storages[tenantName]
	if !ok {
		s = &memStorage{}
		p.storages[tenantName] = s
	}
	return s, nil
}

func (p *fakeProvider) storageFor(tenantName string) *memStorage {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.storages[tenantName]
	if !ok {
		s = &memStorage{}
		p.storages[tenantName] = s
	}
	return s
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// MockNotifier mocks the domain.Notifier interface.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendOTP(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

type tenancyEnv struct {
	catalog     *fakeCatalog
	provider    *fakeProvider
	notifier    *MockNotifier
	jobs        *store.MemoryJobStore
	creds       *auth.Credentials
	workflow    *ProvisioningWorkflow
	provisioner *Provisioner
	auth        *AuthService
	orgs        *OrganizationService
}

func newTenancyEnv(t *testing.T, m *metrics.Metrics) *tenancyEnv {
	t.Helper()

	env := &tenancyEnv{
		catalog:  newFakeCatalog(),
		provider: newFakeProvider(),
		notifier: new(MockNotifier),
		jobs:     store.NewMemoryJobStore(time.Hour),
		creds: auth.NewCredentials(auth.CredentialsConfig{
			Secret:      "test-secret",
			BcryptCost:  bcrypt.MinCost,
			TokenTTL:    30 * time.Minute,
			Concurrency: 4,
		}, m),
	}
	logger := zap.NewNop()
	env.workflow = NewProvisioningWorkflow(env.catalog, env.provider, env.creds, env.notifier, env.jobs, m, logger)
	env.provisioner = NewProvisioner(env.workflow, env.catalog, env.jobs, logger)
	env.auth = NewAuthService(env.catalog, env.provider, env.creds, env.creds, logger)
	env.orgs = NewOrganizationService(env.provider, env.creds, logger)
	return env
}

func acmeRequest() domain.RegistrationRequest {
	return domain.RegistrationRequest{
		Name:          "acme",
		AdminEmail:    "admin@acme.io",
		AdminPassword: "correct",
		Sector:        "manufacturing",
		Type:          "private",
		PhoneNumber:   "+1-555-0100",
		Address:       "1 Road Runner Way",
	}
}

// provision runs the workflow synchronously and requires success.
func (e *tenancyEnv) provision(t *testing.T, req domain.RegistrationRequest) {
	t.Helper()
	e.notifier.On("SendOTP", mock.Anything, req.AdminEmail, mock.AnythingOfType("string")).Return(nil).Maybe()
	_, err := e.workflow.Run(context.Background(), domain.NewProvisioningJob(req, time.Now()), req)
	require.NoError(t, err)
}
