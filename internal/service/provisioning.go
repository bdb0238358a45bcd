package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/Harshitk-cp/orgdb/internal/notify"
	"github.com/Harshitk-cp/orgdb/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTenantExists = fmt.Errorf("organization already exists: %w", domain.ErrConflict)
	ErrJobNotFound  = fmt.Errorf("provisioning job %w", domain.ErrNotFound)
)

// PasswordHasher is satisfied by *auth.Credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) bool
}

// ProvisioningWorkflow creates a tenant database and bootstraps it:
// database, schema, admin user, organization row, verification code.
// Steps commit independently; a failure leaves earlier steps in place.
type ProvisioningWorkflow struct {
	catalog  domain.Catalog
	storage  domain.StorageProvider
	hasher   PasswordHasher
	notifier domain.Notifier
	jobs     domain.JobStore
	metrics  *metrics.Metrics
	logger   *zap.Logger

	now         func() time.Time
	generateOTP func() (string, error)
}

func NewProvisioningWorkflow(
	catalog domain.Catalog,
	storage domain.StorageProvider,
	hasher PasswordHasher,
	notifier domain.Notifier,
	jobs domain.JobStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ProvisioningWorkflow {
	return &ProvisioningWorkflow{
		catalog:     catalog,
		storage:     storage,
		hasher:      hasher,
		notifier:    notifier,
		jobs:        jobs,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
		generateOTP: notify.GenerateOTP,
	}
}

// Run drives job through every stage for req. It returns the success message,
// or a *domain.ProvisioningError naming the stage that could not be reached.
// Every transition is written to the job store.
func (w *ProvisioningWorkflow) Run(ctx context.Context, job *domain.ProvisioningJob, req domain.RegistrationRequest) (string, error) {
	start := time.Now()
	dbName := domain.DatabaseName(req.Name)
	log := w.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("tenant", req.Name),
		zap.String("database", dbName),
	)

	fail := func(stage domain.ProvisioningState, err error) (string, error) {
		job.Fail(stage, err.Error(), w.now())
		w.save(ctx, job, log)
		w.metrics.RecordProvisioning("failure", string(stage), time.Since(start))
		log.Error("tenant provisioning failed", zap.String("stage", string(stage)), zap.Error(err))
		return "", &domain.ProvisioningError{Stage: stage, Err: err}
	}
	advance := func(state domain.ProvisioningState) {
		job.Advance(state, w.now())
		w.save(ctx, job, log)
		log.Debug("tenant provisioning advanced", zap.String("state", string(state)))
	}

	if err := w.catalog.CreateDatabase(ctx, dbName); err != nil {
		return fail(domain.StateDatabaseCreated, fmt.Errorf("create database %s: %w", dbName, err))
	}
	exists, err := w.catalog.DatabaseExists(ctx, dbName)
	if err != nil {
		return fail(domain.StateDatabaseCreated, fmt.Errorf("verify database %s: %w", dbName, err))
	}
	if !exists {
		return fail(domain.StateDatabaseCreated, fmt.Errorf("database %s does not exist after creation", dbName))
	}
	advance(domain.StateDatabaseCreated)

	storage, err := w.storage.Storage(ctx, req.Name)
	if err != nil {
		return fail(domain.StateSchemaReady, fmt.Errorf("open tenant storage: %w", err))
	}
	if err := storage.InitSchema(ctx); err != nil {
		return fail(domain.StateSchemaReady, fmt.Errorf("create schema: %w", err))
	}
	advance(domain.StateSchemaReady)

	hash, err := w.hasher.Hash(ctx, req.AdminPassword)
	if err != nil {
		return fail(domain.StateAdminUserCreated, err)
	}
	admin := &domain.User{Email: req.AdminEmail, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := storage.CreateUser(ctx, admin); err != nil {
		return fail(domain.StateAdminUserCreated, fmt.Errorf("create admin user: %w", err))
	}
	advance(domain.StateAdminUserCreated)

	tenant := &domain.Tenant{
		Name:        req.Name,
		AdminUserID: admin.ID,
		Sector:      req.Sector,
		Type:        req.Type,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	if err := storage.CreateTenant(ctx, tenant); err != nil {
		return fail(domain.StateTenantRecorded, fmt.Errorf("record organization: %w", err))
	}
	advance(domain.StateTenantRecorded)

	if err := w.sendVerificationCode(ctx, req.AdminEmail); err != nil {
		job.NotificationError = err.Error()
		log.Warn("verification code not delivered", zap.String("email", req.AdminEmail), zap.Error(err))
	}

	job.Message = fmt.Sprintf("Organization %s created successfully with admin %s", req.Name, req.AdminEmail)
	advance(domain.StateNotificationSent)
	w.metrics.RecordProvisioning("success", string(domain.StateNotificationSent), time.Since(start))
	log.Info("tenant provisioned",
		zap.String("admin_email", req.AdminEmail),
		zap.Int64("admin_user_id", admin.ID),
		zap.Duration("duration", time.Since(start)),
	)
	return job.Message, nil
}

func (w *ProvisioningWorkflow) sendVerificationCode(ctx context.Context, email string) error {
	code, err := w.generateOTP()
	if err != nil {
		return err
	}
	return w.notifier.SendOTP(ctx, email, code)
}

func (w *ProvisioningWorkflow) save(ctx context.Context, job *domain.ProvisioningJob, log *zap.Logger) {
	if err := w.jobs.Save(ctx, job); err != nil {
		log.Warn("failed to record provisioning job", zap.String("state", string(job.State)), zap.Error(err))
	}
}

// Provisioner accepts registrations and runs the workflow in the background.
// Callers get the Requested job back immediately and may poll it by id.
type Provisioner struct {
	workflow *ProvisioningWorkflow
	catalog  domain.Catalog
	jobs     domain.JobStore
	logger   *zap.Logger
	wg       sync.WaitGroup
	now      func() time.Time
}

func NewProvisioner(workflow *ProvisioningWorkflow, catalog domain.Catalog, jobs domain.JobStore, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		workflow: workflow,
		catalog:  catalog,
		jobs:     jobs,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates req, rejects names that are already provisioned and starts
// provisioning. The run is detached from ctx cancellation and has no timeout.
func (p *Provisioner) Submit(ctx context.Context, req domain.RegistrationRequest) (*domain.ProvisioningJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := p.catalog.DatabaseExists(ctx, domain.DatabaseName(req.Name))
	if err != nil {
		return nil, fmt.Errorf("%w: check organization: %v", domain.ErrInternal, err)
	}
	if exists {
		return nil, ErrTenantExists
	}

	job := domain.NewProvisioningJob(req, p.now())
	if err := p.jobs.Save(ctx, job); err != nil {
		p.logger.Warn("failed to record provisioning job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
	snapshot := *job

	runCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_, _ = p.workflow.Run(runCtx, job, req)
	}()

	p.logger.Info("tenant provisioning started",
		zap.String("job_id", job.ID.String()),
		zap.String("tenant", req.Name),
	)
	return &snapshot, nil
}

func (p *Provisioner) Job(ctx context.Context, id uuid.UUID) (*domain.ProvisioningJob, error) {
	job, err := p.jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// Wait blocks until every started run has finished.
func (p *Provisioner) Wait() {
	p.wg.Wait()
}
