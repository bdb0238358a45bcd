package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Harshitk-cp/orgdb/internal/api/middleware"
	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrganizationHandler struct {
	provisioner *service.Provisioner
	orgs        *service.OrganizationService
	logger      *zap.Logger
}

func NewOrganizationHandler(provisioner *service.Provisioner, orgs *service.OrganizationService, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{provisioner: provisioner, orgs: orgs, logger: logger}
}

type registerResponse struct {
	Message string    `json:"message"`
	JobID   uuid.UUID `json:"job_id"`
}

// Register starts provisioning and answers before the tenant exists.
func (h *OrganizationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.provisioner.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to start organization registration")
		return
	}

	writeJSON(w, http.StatusAccepted, registerResponse{
		Message: "Organization registration in progress. Admin will be notified via email.",
		JobID:   job.ID,
	})
}

func (h *OrganizationHandler) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.provisioner.Job(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get registration status")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (h *OrganizationHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.orgs.LookupByName(r.Context(), tenant, r.URL.Query().Get("organization_name"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get organization")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type createUserRequest struct {
	Email    string `json:"user_email"`
	Password string `json:"user_password"`
}

func (h *OrganizationHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.orgs.CreateUser(r.Context(), tenant, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("User %s created successfully in organization.", user.Email),
	})
}
