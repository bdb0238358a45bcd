package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Harshitk-cp/orgdb/internal/api/middleware"
	"github.com/Harshitk-cp/orgdb/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewUserHandler(auth *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login expects the tenant to be resolved from org_name by PayloadTenant.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == "" {
		writeError(w, http.StatusUnauthorized, "organization name is required")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), tenant, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
