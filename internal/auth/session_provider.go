package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/superagent-ai/superagent/console/internal/sessions"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
)

// SessionProvider authenticates browser requests by their session cookie.
type SessionProvider struct {
	store  sessions.Store
	cookie string
}

// NewSessionProvider reads the session id from the named cookie.
func NewSessionProvider(store sessions.Store, cookie string) *SessionProvider {
	return &SessionProvider{store: store, cookie: cookie}
}

func (p *SessionProvider) Name() string { return "session" }

func (p *SessionProvider) Enabled() bool { return p.store != nil && p.cookie != "" }

// Authenticate returns (nil, nil) when the request carries no session cookie
// and an error when the cookie names an unknown or expired session.
func (p *SessionProvider) Authenticate(ctx context.Context, r *http.Request) (*contracts.Identity, error) {
	c, err := r.Cookie(p.cookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	sess, err := p.store.Get(ctx, c.Value)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, fmt.Errorf("session expired, please sign in again")
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &contracts.Identity{
		Subject:     sess.UserID,
		Email:       sess.Email,
		DisplayName: sess.Email,
		Provider:    "session",
		SessionID:   sess.ID,
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.ExpiresAt,
	}, nil
}
