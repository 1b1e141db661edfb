package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	pkgmw "github.com/superagent-ai/superagent/console/pkg/middleware"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ClientScope builds the request-scoped Superagent client. It must run after
// AuthMiddleware.
type ClientScope struct {
	profiles store.ProfileStore
	clients  contracts.ClientFactory
}

func NewClientScope(profiles store.ProfileStore, clients contracts.ClientFactory) *ClientScope {
	return &ClientScope{profiles: profiles, clients: clients}
}

// Handler resolves the bearer token for the caller and stores a client built
// from it in the context. The token comes from, in order:
//   - the API key a bearer caller sent directly
//   - the API key on the signed-in user's profile
//   - nothing (the client then sends "Bearer undefined")
func (cs *ClientScope) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity := pkgmw.GetIdentity(ctx)

		var (
			token   string
			profile *models.Profile
		)
		switch {
		case identity == nil:
		case identity.APIKey != "":
			token = identity.APIKey
		default:
			p, err := cs.profiles.GetProfile(ctx, identity.Subject)
			var nf *store.ErrNotFound
			switch {
			case errors.As(err, &nf):
			case err != nil:
				log.Error().Err(err).Str("user_id", identity.Subject).Msg("Profile lookup failed")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"profile_unavailable","notification":"Could not load your profile"}`))
				return
			default:
				profile = p
				token = p.APIKey
			}
		}

		ctx = pkgmw.SetProfile(ctx, profile)
		ctx = pkgmw.SetClient(ctx, cs.clients(token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
