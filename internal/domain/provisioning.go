package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProvisioningState string

const (
	StateRequested        ProvisioningState = "requested"
	StateDatabaseCreated  ProvisioningState = "database_created"
	StateSchemaReady      ProvisioningState = "schema_ready"
	StateAdminUserCreated ProvisioningState = "admin_user_created"
	StateTenantRecorded   ProvisioningState = "tenant_recorded"
	StateNotificationSent ProvisioningState = "notification_sent"
	StateFailed           ProvisioningState = "failed"
)

// IsTerminal reports whether no further transition can happen from s.
func (s ProvisioningState) IsTerminal() bool {
	return s == StateNotificationSent || s == StateFailed
}

// RegistrationRequest carries everything needed to provision a tenant.
type RegistrationRequest struct {
	Name          string `json:"name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	Sector        string `json:"sector"`
	Type          string `json:"type"`
	PhoneNumber   string `json:"phone_number"`
	Address       string `json:"address"`
}

func (r RegistrationRequest) Validate() error {
	if err := ValidateTenantName(r.Name); err != nil {
		return err
	}
	return ValidateCredentials(r.AdminEmail, r.AdminPassword)
}

// ProvisioningJob records the progress of one provisioning run.
// FailedStage names the stage that could not be reached when State is StateFailed.
type ProvisioningJob struct {
	ID          uuid.UUID         `json:"id"`
	TenantName  string            `json:"tenant_name"`
	AdminEmail  string            `json:"admin_email"`
	State       ProvisioningState `json:"state"`
	FailedStage ProvisioningState `json:"failed_stage,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Message     string            `json:"message,omitempty"`
	// NotificationError is set when the verification code could not be sent.
	// It does not fail the run.
	NotificationError string    `json:"notification_error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewProvisioningJob(req RegistrationRequest, now time.Time) *ProvisioningJob {
	return &ProvisioningJob{
		ID:         uuid.New(),
		TenantName: req.Name,
		AdminEmail: req.AdminEmail,
		State:      StateRequested,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Advance moves the job forward. Terminal jobs are left untouched.
func (j *ProvisioningJob) Advance(state ProvisioningState, now time.Time) {
	if j.State.IsTerminal() {
		return
	}
	j.State = state
	j.UpdatedAt = now
}

func (j *ProvisioningJob) Fail(stage ProvisioningState, reason string, now time.Time) {
	if j.State.IsTerminal() {
		return
	}
	j.State = StateFailed
	j.FailedStage = stage
	j.Reason = reason
	j.UpdatedAt = now
}
