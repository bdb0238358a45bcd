package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"time"
)

// DatabasePrefix is prepended to a tenant name to form its database name.
const DatabasePrefix = "org_"

// MaxTenantNameLen keeps DatabasePrefix+name within PostgreSQL's 63 byte identifier limit.
const MaxTenantNameLen = 63 - len(DatabasePrefix)

// MaxPasswordLen is the longest password bcrypt accepts.
const MaxPasswordLen = 72

var tenantNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Tenant is the organization metadata row stored inside the tenant's own database.
type Tenant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AdminUserID int64     `json:"admin_user_id"`
	Sector      string    `json:"sector"`
	Type        string    `json:"type"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// TenantSummary is the public view of a tenant.
type TenantSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	AdminEmail string `json:"admin_email"`
}

// ValidateTenantName checks that name maps to a unique, valid database identifier.
// Only lowercase letters, digits and underscores are accepted, so no two names
// share a database after PostgreSQL identifier folding.
func ValidateTenantName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: tenant name is required", ErrValidation)
	}
	if len(name) > MaxTenantNameLen {
		return fmt.Errorf("%w: tenant name must be at most %d characters", ErrValidation, MaxTenantNameLen)
	}
	if !tenantNamePattern.MatchString(name) {
		return fmt.Errorf("%w: tenant name may only contain lowercase letters, digits and underscores", ErrValidation)
	}
	return nil
}

// DatabaseName returns the storage identifier of a tenant. The name must be valid.
func DatabaseName(tenantName string) string {
	return DatabasePrefix + tenantName
}

func ValidateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordLen)
	}
	return nil
}
