package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/pkg/contracts"
	pkgmw "github.com/superagent-ai/superagent/console/pkg/middleware"
)

// AuthMiddleware authenticates requests using the AuthProviderChain and
// stores the resulting Identity in context.
type AuthMiddleware struct {
	chain       contracts.AuthProviderChain
	requireAuth bool
}

// NewAuthMiddleware creates the auth middleware. With requireAuth set,
// requests no provider recognises are rejected; otherwise they continue
// anonymously and reach the remote API with no token.
func NewAuthMiddleware(chain contracts.AuthProviderChain, requireAuth bool) *AuthMiddleware {
	return &AuthMiddleware{
		chain:       chain,
		requireAuth: requireAuth,
	}
}

// Handler returns the HTTP handler middleware that authenticates requests.
func (am *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := am.chain.Authenticate(r.Context(), r)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			unauthorized(w, "authentication_failed", err.Error())
			return
		}

		if identity == nil && am.requireAuth {
			unauthorized(w, "authentication_required",
				"Sign in, or set Authorization: Bearer <api key> or X-API-Key.")
			return
		}

		// nil identity is fine here: anonymous access
		r = r.WithContext(pkgmw.SetIdentity(r.Context(), identity))
		recordIdentity(r)

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, code, notification string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="superagent"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":        code,
		"notification": notification,
	})
}
