package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/orgdb/internal/domain"
)

var (
	ErrTenantRequired     = fmt.Errorf("organization name is required: %w", domain.ErrUnauthorized)
	ErrMissingTenantClaim = fmt.Errorf("token has no organization name: %w", domain.ErrUnauthorized)
	ErrMissingToken       = fmt.Errorf("missing authorization header: %w", domain.ErrUnauthorized)
	ErrMalformedHeader    = fmt.Errorf("invalid authorization header format: %w", domain.ErrUnauthorized)
)

type TokenVerifier interface {
	VerifyToken(token string) (*Claims, error)
}

// Resolver works out which tenant a request targets.
type Resolver struct {
	tokens TokenVerifier
}

func NewResolver(tokens TokenVerifier) *Resolver {
	return &Resolver{tokens: tokens}
}

// ResolveFromPayload reads org_name from an unauthenticated JSON body.
// It is used at login, before the caller holds a token.
func (r *Resolver) ResolveFromPayload(body []byte) (string, error) {
	var payload struct {
		OrgName string `json:"org_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	if payload.OrgName == "" {
		return "", ErrTenantRequired
	}
	if err := domain.ValidateTenantName(payload.OrgName); err != nil {
		return "", err
	}
	return payload.OrgName, nil
}

// ResolveFromToken verifies token and returns the tenant it was issued for.
func (r *Resolver) ResolveFromToken(token string) (string, error) {
	claims, err := r.claims(token)
	if err != nil {
		return "", err
	}
	return claims.TenantName, nil
}

// ResolveFromHeader accepts an Authorization header of the form "Bearer <token>".
func (r *Resolver) ResolveFromHeader(header string) (*Claims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, ErrMalformedHeader
	}
	return r.claims(parts[1])
}

func (r *Resolver) claims(token string) (*Claims, error) {
	claims, err := r.tokens.VerifyToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.TenantName == "" {
		return nil, ErrMissingTenantClaim
	}
	return claims, nil
}
