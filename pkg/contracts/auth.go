// Package contracts: authentication interfaces for the pluggable auth layer.
//
// The console ships two providers: a cookie session issued after a GoTrue
// sign-in, and a bearer token carrying a Superagent API key for scripted use.
package contracts

import (
	"context"
	"net/http"
	"time"
)

// ── Identity ────────────────────────────────────────────────

// Identity represents an authenticated console user.
// Produced by an AuthProvider, consumed by handlers through the request context.
type Identity struct {
	// Subject is the auth provider's user id (or an API key hash for bearer access).
	Subject string `json:"subject"`

	// Email is the user's email address (empty for bearer access).
	Email string `json:"email,omitempty"`

	// DisplayName is a human-readable name.
	DisplayName string `json:"display_name,omitempty"`

	// Provider identifies which auth provider authenticated this identity.
	// Values: "session", "bearer"
	Provider string `json:"provider"`

	// SessionID is the console session backing this identity, if any.
	SessionID string `json:"session_id,omitempty"`

	// AccessToken is the auth provider's access token for the session.
	AccessToken string `json:"-"`

	// APIKey is the Superagent API key supplied directly by a bearer caller.
	// Session identities leave it empty; their key lives in the profile.
	APIKey string `json:"-"`

	// ExpiresAt is when this identity's session expires.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ── AuthProvider ────────────────────────────────────────────

// AuthProvider authenticates an HTTP request and returns an Identity.
//
// The chain pattern:
//   - Return (*Identity, nil) → authenticated, stop chain
//   - Return (nil, nil) → this provider doesn't handle this request, try next
//   - Return (nil, error) → authentication was attempted but failed, reject
type AuthProvider interface {
	// Name returns the provider identifier ("session", "bearer").
	Name() string

	// Authenticate inspects the request and returns an Identity.
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)

	// Enabled returns whether this provider is configured and active.
	Enabled() bool
}

// ── AuthProviderChain ───────────────────────────────────────

// AuthProviderChain tries providers in priority order until one returns an Identity.
type AuthProviderChain interface {
	// Authenticate walks the chain of providers in order.
	// Returns the first successful Identity, or (nil, nil) if no provider matched.
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)

	// RegisterProvider adds a provider to the end of the chain.
	RegisterProvider(provider AuthProvider)
}
