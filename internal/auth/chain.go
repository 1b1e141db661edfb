// Package auth handles console sign-in and request authentication.
//
// Sign-in is delegated to the hosted GoTrue provider (email OTP or GitHub
// OAuth with PKCE). Dashboard requests are then authenticated by a
// ProviderChain holding the SessionProvider (the cookie set after sign-in)
// and the BearerProvider (a Superagent API key, for scripts).
package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/pkg/contracts"
)

// ProviderChain asks each enabled provider in turn who the caller is.
//
// A provider answers with an identity (the caller is known), nil and nil
// (the request is not its kind, ask the next one), or an error (the caller
// presented credentials that were refused). An error ends the walk: an
// expired session cookie must not fall through to anonymous access.
type ProviderChain struct {
	mu        sync.RWMutex
	providers []contracts.AuthProvider
}

func NewProviderChain() *ProviderChain {
	return &ProviderChain{}
}

// RegisterProvider appends p. Server wiring registers the session provider
// before the bearer provider, so a browser with a cookie never needs a key.
func (c *ProviderChain) RegisterProvider(p contracts.AuthProvider) {
	c.mu.Lock()
	c.providers = append(c.providers, p)
	c.mu.Unlock()

	log.Info().
		Str("provider", p.Name()).
		Bool("enabled", p.Enabled()).
		Msg("🔑 Console auth provider registered")
}

// Authenticate returns the caller's identity, or nil and nil for an
// anonymous request.
func (c *ProviderChain) Authenticate(ctx context.Context, r *http.Request) (*contracts.Identity, error) {
	for _, p := range c.snapshot() {
		if !p.Enabled() {
			continue
		}
		id, err := p.Authenticate(ctx, r)
		switch {
		case err != nil:
			log.Debug().Err(err).Str("provider", p.Name()).Msg("Credentials refused")
			return nil, err
		case id != nil:
			log.Debug().
				Str("provider", p.Name()).
				Str("subject", id.Subject).
				Msg("Caller identified")
			return id, nil
		}
	}
	return nil, nil
}

// ListProviders returns provider names in registration order.
func (c *ProviderChain) ListProviders() []string {
	ps := c.snapshot()
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name())
	}
	return names
}

func (c *ProviderChain) snapshot() []contracts.AuthProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]contracts.AuthProvider(nil), c.providers...)
}
