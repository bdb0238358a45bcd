package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/store"
	"go.uber.org/zap"
)

var ErrUserExists = fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)

// OrganizationService serves tenant-scoped reads and writes. The tenant name
// always comes from a verified token, never from request input.
type OrganizationService struct {
	storage domain.StorageProvider
	hasher  PasswordHasher
	logger  *zap.Logger
}

func NewOrganizationService(storage domain.StorageProvider, hasher PasswordHasher, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{storage: storage, hasher: hasher, logger: logger}
}

// LookupByName returns the organization called name inside tenantName's database.
func (s *OrganizationService) LookupByName(ctx context.Context, tenantName, name string) (*domain.TenantSummary, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: organization_name is required", domain.ErrValidation)
	}

	storage, err := s.storage.Storage(ctx, tenantName)
	if err != nil {
		return nil, fmt.Errorf("%w: open organization storage: %v", domain.ErrInternal, err)
	}

	tenant, err := storage.GetTenantByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("organization with name '%s' %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get organization: %v", domain.ErrInternal, err)
	}

	admin, err := storage.GetUserByID(ctx, tenant.AdminUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: get admin of organization %s: %v", domain.ErrInternal, name, err)
	}

	return &domain.TenantSummary{
		ID:         tenant.ID,
		Name:       tenant.Name,
		AdminEmail: admin.Email,
	}, nil
}

// CreateUser adds a regular user to tenantName's database.
func (s *OrganizationService) CreateUser(ctx context.Context, tenantName, email, password string) (*domain.User, error) {
	if err := domain.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	storage, err := s.storage.Storage(ctx, tenantName)
	if err != nil {
		return nil, fmt.Errorf("%w: open organization storage: %v", domain.ErrInternal, err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	user := &domain.User{Email: email, PasswordHash: hash, Role: domain.RoleUser}
	if err := storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%w: create user: %v", domain.ErrInternal, err)
	}

	s.logger.Info("user created",
		zap.String("tenant", tenantName),
		zap.Int64("user_id", user.ID),
	)
	return user, nil
}
