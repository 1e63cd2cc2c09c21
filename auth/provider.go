package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider supplies a bearer token for outgoing API calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticProvider returns a fixed personal access token.
type StaticProvider struct {
	token string
}

// NewStatic creates a provider for a personal access token.
func NewStatic(token string) (*StaticProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("auth: token is required")
	}
	return &StaticProvider{token: token}, nil
}

// Token returns the configured token.
func (p *StaticProvider) Token(_ context.Context) (string, error) {
	return p.token, nil
}

// maxAppTokenTTL is the longest app-token lifetime the API accepts.
const maxAppTokenTTL = 10 * time.Minute

// AppProvider signs short-lived RS256 JWTs for a GitHub App. Tokens are
// cached and re-signed shortly before expiry.
type AppProvider struct {
	appID string
	key   *rsa.PrivateKey
	ttl   time.Duration

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewApp creates an app-token provider from a PEM-encoded RSA private
// key. ttl defaults to the 10 minute maximum when zero.
func NewApp(appID string, privateKeyPEM []byte, ttl time.Duration) (*AppProvider, error) {
	if appID == "" {
		return nil, fmt.Errorf("auth: app id is required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("auth: parsing private key: %w", err)
	}
	if ttl <= 0 || ttl > maxAppTokenTTL {
		ttl = maxAppTokenTTL
	}
	return &AppProvider{appID: appID, key: key, ttl: ttl}, nil
}

// Token returns a signed app JWT, reusing the cached one until it nears
// expiry.
func (p *AppProvider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-sign one minute before expiry to absorb clock skew downstream.
	if p.cached != "" && time.Until(p.expiresAt) > time.Minute {
		return p.cached, nil
	}

	now := time.Now()
	expiresAt := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Issuer: p.appID,
		// Backdate iat so a slightly fast local clock still validates.
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("auth: signing app token: %w", err)
	}

	p.cached = signed
	p.expiresAt = expiresAt
	return signed, nil
}
