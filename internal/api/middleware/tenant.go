package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Harshitk-cp/orgdb/internal/auth"
	"github.com/Harshitk-cp/orgdb/internal/domain"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	tenantContextKey contextKey = "tenant"
)

// maxPayloadBytes caps bodies buffered by PayloadTenant.
const maxPayloadBytes = 1 << 20

// ClaimsFromContext returns the verified token claims, or nil on routes
// that do not require a bearer token.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return c
}

// TenantFromContext returns the tenant name the request was resolved to.
func TenantFromContext(ctx context.Context) string {
	name, _ := ctx.Value(tenantContextKey).(string)
	return name
}

func withTenant(r *http.Request, name string) *http.Request {
	noteTenant(r.Context(), name)
	return r.WithContext(context.WithValue(r.Context(), tenantContextKey, name))
}

// BearerTenant verifies the bearer token and scopes the request to the
// tenant named in its org_name claim.
func BearerTenant(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := resolver.ResolveFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeResolveError(w, err)
				return
			}

			r = withTenant(r, claims.TenantName)
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PayloadTenant reads org_name from the JSON body and restores the body
// for the handler.
func PayloadTenant(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			name, err := resolver.ResolveFromPayload(body)
			if err != nil {
				writeResolveError(w, err)
				return
			}

			next.ServeHTTP(w, withTenant(r, name))
		})
	}
}

func writeResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusUnauthorized, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
