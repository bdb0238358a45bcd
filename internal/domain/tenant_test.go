package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateTenantName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "acme", false},
		{"digits and underscore", "acme_2024", false},
		{"max length", strings.Repeat("a", MaxTenantNameLen), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxTenantNameLen+1), true},
		{"uppercase", "Acme", true},
		{"hyphen", "acme-corp", true},
		{"quote", `acme"; DROP DATABASE x; --`, true},
		{"space", "acme corp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTenantName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ValidateTenantName(%q) = %v, want ErrValidation", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateTenantName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}

func TestDatabaseName(t *testing.T) {
	if got := DatabaseName("acme"); got != "org_acme" {
		t.Errorf("DatabaseName(acme) = %q, want org_acme", got)
	}
	if DatabaseName("acme") == DatabaseName("acme2") {
		t.Error("distinct tenants must map to distinct databases")
	}
	if got := len(DatabaseName(strings.Repeat("a", MaxTenantNameLen))); got != 63 {
		t.Errorf("longest database name is %d bytes, want 63", got)
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "admin@acme.io", "s3cret", false},
		{"missing email", "", "s3cret", true},
		{"bad email", "not-an-email", "s3cret", true},
		{"missing password", "admin@acme.io", "", true},
		{"password too long", "admin@acme.io", strings.Repeat("x", MaxPasswordLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestProvisioningJobTransitions(t *testing.T) {
	now := time.Now()
	job := NewProvisioningJob(RegistrationRequest{Name: "acme", AdminEmail: "admin@acme.io"}, now)

	if job.State != StateRequested {
		t.Fatalf("new job state = %s, want %s", job.State, StateRequested)
	}

	job.Advance(StateDatabaseCreated, now.Add(time.Second))
	job.Fail(StateSchemaReady, "boom", now.Add(2*time.Second))

	if job.State != StateFailed || job.FailedStage != StateSchemaReady || job.Reason != "boom" {
		t.Fatalf("unexpected failed job: %+v", job)
	}

	job.Advance(StateAdminUserCreated, now.Add(3*time.Second))
	if job.State != StateFailed {
		t.Errorf("terminal job moved to %s", job.State)
	}
}

func TestProvisioningErrorIs(t *testing.T) {
	cause := errors.New("duplicate key")
	err := error(&ProvisioningError{Stage: StateAdminUserCreated, Err: cause})

	if !errors.Is(err, ErrProvisioning) {
		t.Error("expected errors.Is(err, ErrProvisioning)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be unwrapped")
	}
	if !errors.Is(ErrInvalidToken, ErrUnauthorized) {
		t.Error("ErrInvalidToken must be an ErrUnauthorized")
	}
}
