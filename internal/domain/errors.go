package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap one of these so callers can map them with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrProvisioning = errors.New("provisioning failed")
	ErrInternal     = errors.New("internal error")
)

// ErrInvalidToken is returned when an access token has a bad signature, is malformed or expired.
var ErrInvalidToken = fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)

// ProvisioningError reports the stage at which a provisioning run stopped.
type ProvisioningError struct {
	Stage ProvisioningState
	Err   error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Stage, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

func (e *ProvisioningError) Is(target error) bool {
	return target == ErrProvisioning
}
