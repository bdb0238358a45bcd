package domain

import (
	"context"

	"github.com/google/uuid"
)

// Catalog manages tenant databases through the maintenance connection.
type Catalog interface {
	CreateDatabase(ctx context.Context, name string) error
	DatabaseExists(ctx context.Context, name string) (bool, error)
}

// TenantStorage is the data access surface of one tenant's isolated database.
// User and Tenant rows are joined only through Tenant.AdminUserID.
type TenantStorage interface {
	InitSchema(ctx context.Context) error
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	CreateTenant(ctx context.Context, t *Tenant) error
	GetTenantByName(ctx context.Context, name string) (*Tenant, error)
	GetTenantByAdminUserID(ctx context.Context, userID int64) (*Tenant, error)
}

// StorageProvider hands out the storage of a tenant by name.
type StorageProvider interface {
	Storage(ctx context.Context, tenantName string) (TenantStorage, error)
}

type JobStore interface {
	Save(ctx context.Context, j *ProvisioningJob) error
	Get(ctx context.Context, id uuid.UUID) (*ProvisioningJob, error)
}

// Notifier delivers one-time verification codes.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}
