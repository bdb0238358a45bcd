// Package auth hashes passwords, issues and verifies access tokens, and
// resolves the tenant a request belongs to.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Claims is the identity carried by an access token.
type Claims struct {
	Email      string
	UserID     int64
	TenantName string
}

type tokenClaims struct {
	UserID     int64  `json:"user_id"`
	TenantName string `json:"org_name,omitempty"`
	jwt.RegisteredClaims
}

type CredentialsConfig struct {
	Secret      string
	BcryptCost  int
	TokenTTL    time.Duration
	Concurrency int
}

// Credentials hashes passwords and signs tokens with a process-wide HMAC key.
// Hashing and verification share a bounded number of worker slots.
type Credentials struct {
	secret  []byte
	cost    int
	ttl     time.Duration
	slots   *semaphore.Weighted
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCredentials(cfg CredentialsConfig, m *metrics.Metrics) *Credentials {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Credentials{
		secret:  []byte(cfg.Secret),
		cost:    cfg.BcryptCost,
		ttl:     cfg.TokenTTL,
		slots:   semaphore.NewWeighted(int64(concurrency)),
		metrics: m,
		now:     time.Now,
	}
}

// Hash returns a bcrypt hash embedding its salt and cost.
// It waits for a free worker slot, returning ctx.Err() if ctx ends first.
func (c *Credentials) Hash(ctx context.Context, password string) (string, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveHash("hash", time.Since(start)) }()

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash or a
// cancelled wait for a worker slot counts as a mismatch. bcrypt ignores bytes
// past MaxPasswordLen, so longer passwords never match.
func (c *Credentials) Verify(ctx context.Context, password, hash string) bool {
	if len(password) > domain.MaxPasswordLen {
		return false
	}

	start := time.Now()
	defer func() { c.metrics.ObserveHash("verify", time.Since(start)) }()

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer c.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs claims with an expiry of now+ttl. A non-positive ttl uses the configured default.
func (c *Credentials) IssueToken(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:     claims.UserID,
		TenantName: claims.TenantName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// TokenTTL returns the default token lifetime.
func (c *Credentials) TokenTTL() time.Duration {
	return c.ttl
}

// VerifyToken checks signature, structure and expiry and returns the signed claims.
// Every failure wraps domain.ErrInvalidToken.
func (c *Credentials) VerifyToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{},
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	return &Claims{
		Email:      tc.Subject,
		UserID:     tc.UserID,
		TenantName: tc.TenantName,
	}, nil
}
