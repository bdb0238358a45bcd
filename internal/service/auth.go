package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/auth"
	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/store"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrTenantNotFound     = fmt.Errorf("organization %w", domain.ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("incorrect password: %w", domain.ErrUnauthorized)
)

// TokenIssuer is satisfied by *auth.Credentials.
type TokenIssuer interface {
	IssueToken(claims auth.Claims, ttl time.Duration) (string, error)
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AuthService struct {
	catalog domain.Catalog
	storage domain.StorageProvider
	hasher  PasswordHasher
	tokens  TokenIssuer
	logger  *zap.Logger
}

func NewAuthService(catalog domain.Catalog, storage domain.StorageProvider, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		catalog: catalog,
		storage: storage,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger,
	}
}

// Login authenticates email/password against the named tenant's database and
// issues a bearer token scoped to that tenant. The tenant database is checked
// for existence first so unknown names never get a cached pool.
func (s *AuthService) Login(ctx context.Context, tenantName, email, password string) (*LoginResult, error) {
	exists, err := s.catalog.DatabaseExists(ctx, domain.DatabaseName(tenantName))
	if err != nil {
		return nil, fmt.Errorf("%w: check organization: %v", domain.ErrInternal, err)
	}
	if !exists {
		return nil, ErrTenantNotFound
	}

	storage, err := s.storage.Storage(ctx, tenantName)
	if err != nil {
		return nil, fmt.Errorf("%w: open organization storage: %v", domain.ErrInternal, err)
	}

	user, err := storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get user: %v", domain.ErrInternal, err)
	}

	tenant, err := tenantForUser(ctx, storage, user, tenantName)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		s.logger.Info("login rejected", zap.String("tenant", tenantName), zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(auth.Claims{
		Email:      user.Email,
		UserID:     user.ID,
		TenantName: tenant.Name,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	return &LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}

// tenantForUser finds the organization record a user belongs to. Admins are
// matched through the organization's admin reference; other users belong to
// the single organization recorded in their database.
func tenantForUser(ctx context.Context, storage domain.TenantStorage, user *domain.User, tenantName string) (*domain.Tenant, error) {
	var (
		tenant *domain.Tenant
		err    error
	)
	if user.Role == domain.RoleAdmin {
		tenant, err = storage.GetTenantByAdminUserID(ctx, user.ID)
	} else {
		tenant, err = storage.GetTenantByName(ctx, tenantName)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("%w: get organization: %v", domain.ErrInternal, err)
	}
	return tenant, nil
}
