package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/superagent-ai/superagent/console/internal/api/middleware"
	"github.com/superagent-ai/superagent/console/internal/auth"
	"github.com/superagent-ai/superagent/console/internal/sessions"
	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	pkgmw "github.com/superagent-ai/superagent/console/pkg/middleware"
	"github.com/superagent-ai/superagent/console/pkg/models"
	"github.com/superagent-ai/superagent/console/pkg/superagent"
)

func newChain(ss sessions.Store) *auth.ProviderChain {
	chain := auth.NewProviderChain()
	chain.RegisterProvider(auth.NewSessionProvider(ss, "sa_session"))
	chain.RegisterProvider(auth.NewBearerProvider(true))
	return chain
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	ss := sessions.NewMemoryStore(0)
	handler := middleware.NewAuthMiddleware(newChain(ss), true).Handler(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("Authorization", "Bearer sk-test")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("bearer: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_AnonymousAllowed(t *testing.T) {
	ss := sessions.NewMemoryStore(0)
	var identity *contracts.Identity
	handler := middleware.NewAuthMiddleware(newChain(ss), false).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity = pkgmw.GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if identity != nil {
		t.Errorf("identity = %+v, want nil", identity)
	}
}

func TestAuthMiddleware_ExpiredSessionRejected(t *testing.T) {
	ss := sessions.NewMemoryStore(0)
	handler := middleware.NewAuthMiddleware(newChain(ss), false).Handler(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.AddCookie(&http.Cookie{Name: "sa_session", Value: "gone"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// tokenRecorder captures the token each client is built with.
type tokenRecorder struct {
	tokens []string
}

func (tr *tokenRecorder) factory(token string) contracts.ResourceClient {
	tr.tokens = append(tr.tokens, token)
	return superagent.New("http://remote.invalid/api/v1", token)
}

func TestClientScope_TokenSource(t *testing.T) {
	ctx := context.Background()
	profiles := store.NewMemoryStore("")
	t.Cleanup(func() { profiles.Close() })
	_ = profiles.UpsertProfile(ctx, &models.Profile{UserID: "user-1", APIKey: "sk-profile"})

	tests := []struct {
		name        string
		identity    *contracts.Identity
		wantToken   string
		wantProfile bool
	}{
		{"anonymous", nil, "", false},
		{"bearer", &contracts.Identity{Subject: "apikey:abc", Provider: "bearer", APIKey: "sk-direct"}, "sk-direct", false},
		{"session with profile", &contracts.Identity{Subject: "user-1", Provider: "session"}, "sk-profile", true},
		{"session without profile", &contracts.Identity{Subject: "user-2", Provider: "session"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &tokenRecorder{}
			var (
				gotClient  contracts.ResourceClient
				gotProfile *models.Profile
			)
			handler := middleware.NewClientScope(profiles, rec.factory).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotClient = pkgmw.GetClient(r.Context())
				gotProfile = pkgmw.GetProfile(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
			req = req.WithContext(pkgmw.SetIdentity(req.Context(), tt.identity))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if len(rec.tokens) != 1 || rec.tokens[0] != tt.wantToken {
				t.Errorf("tokens = %q, want [%q]", rec.tokens, tt.wantToken)
			}
			if gotClient == nil {
				t.Error("client not stored in context")
			}
			if (gotProfile != nil) != tt.wantProfile {
				t.Errorf("profile = %+v, want present=%v", gotProfile, tt.wantProfile)
			}
		})
	}
}
