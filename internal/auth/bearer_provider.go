package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/superagent-ai/superagent/console/pkg/contracts"
)

// BearerProvider accepts a Superagent API key in the Authorization: Bearer
// <key> or X-API-Key header. The key is not checked locally: the remote API
// rejects a bad key on the first proxied call.
type BearerProvider struct {
	enabled bool
}

// NewBearerProvider creates the provider. Disabled providers are skipped by
// the chain.
func NewBearerProvider(enabled bool) *BearerProvider {
	return &BearerProvider{enabled: enabled}
}

func (p *BearerProvider) Name() string { return "bearer" }

func (p *BearerProvider) Enabled() bool { return p.enabled }

// Authenticate returns (nil, nil) if no API key is present.
func (p *BearerProvider) Authenticate(_ context.Context, r *http.Request) (*contracts.Identity, error) {
	apiKey := extractAPIKeyFromRequest(r)
	if apiKey == "" {
		return nil, nil
	}

	return &contracts.Identity{
		Subject:     "apikey:" + KeyFingerprint(apiKey),
		Provider:    "bearer",
		DisplayName: "API Key User",
		APIKey:      apiKey,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

// KeyFingerprint is a short, log-safe digest of an API key.
func KeyFingerprint(key string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))[:16]
}

func extractAPIKeyFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}
	return ""
}
