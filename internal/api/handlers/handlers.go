// Package handlers implements the HTTP handlers of the Superagent console:
// the sign-in endpoints and the dashboard's JSON page-data endpoints.
//
// Dashboard handlers are thin: each one calls the request-scoped Superagent
// client and forwards the remote envelope with the remote status code.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/auth"
	"github.com/superagent-ai/superagent/console/internal/config"
	"github.com/superagent-ai/superagent/console/internal/forms"
	"github.com/superagent-ai/superagent/console/internal/onboarding"
	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	pkgmw "github.com/superagent-ai/superagent/console/pkg/middleware"
	"github.com/superagent-ai/superagent/console/pkg/superagent"
)

// maxBodyBytes bounds JSON and YAML request bodies.
const maxBodyBytes = 1 << 20

// Handlers holds all handler dependencies.
type Handlers struct {
	Config     *config.Config
	Flow       *auth.Flow
	Profiles   store.ProfileStore
	Onboarding *onboarding.Service
	Clients    contracts.ClientFactory
}

// New creates a new Handlers instance with all dependencies.
func New(cfg *config.Config, flow *auth.Flow, profiles store.ProfileStore, clients contracts.ClientFactory) *Handlers {
	return &Handlers{
		Config:     cfg,
		Flow:       flow,
		Profiles:   profiles,
		Onboarding: onboarding.NewService(profiles, clients),
		Clients:    clients,
	}
}

// client returns the request-scoped client set by the client scope
// middleware, or an unauthenticated one.
func (h *Handlers) client(r *http.Request) contracts.ResourceClient {
	if c := pkgmw.GetClient(r.Context()); c != nil {
		return c
	}
	return h.Clients("")
}

// ── Responses ───────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes {"error", "notification"}. The notification is the
// one-line message the dashboard shows to the user.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error":        http.StatusText(status),
		"notification": message,
	})
}

// respondValidation writes 422 with the per-field problems.
func respondValidation(w http.ResponseWriter, err error) {
	var (
		verrs  forms.ValidationErrors
		single *forms.ValidationError
	)
	switch {
	case errors.As(err, &verrs):
	case errors.As(err, &single):
		verrs = forms.ValidationErrors{single}
	default:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":        "validation_failed",
		"notification": verrs[0].Error(),
		"fields":       verrs,
	})
}

func isValidation(err error) bool {
	var (
		verrs  forms.ValidationErrors
		single *forms.ValidationError
	)
	return errors.As(err, &verrs) || errors.As(err, &single)
}

// respondRemote forwards a remote envelope. Transport failures become 502;
// strict-mode status errors keep the remote status.
func respondRemote[T any](w http.ResponseWriter, resp *superagent.Response[T], err error) {
	if err != nil {
		respondClientError(w, err)
		return
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	respondJSON(w, status, resp)
}

func respondClientError(w http.ResponseWriter, err error) {
	var apiErr *superagent.APIError
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.StatusCode, apiErr.Body)
		return
	}
	log.Warn().Err(err).Msg("Superagent API unreachable")
	respondError(w, http.StatusBadGateway, err.Error())
}

// ── Requests ────────────────────────────────────────────────

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// decodePayload reads an arbitrary JSON object to forward verbatim.
func decodePayload(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	var payload json.RawMessage
	if !decodeJSON(w, r, &payload) {
		return nil, false
	}
	return payload, true
}

// pagination reads skip and take. It returns nil when neither is present so
// the client applies its per-resource defaults.
func pagination(r *http.Request) (*superagent.Pagination, error) {
	q := r.URL.Query()
	if !q.Has("skip") && !q.Has("take") {
		return nil, nil
	}
	p := &superagent.Pagination{}
	var err error
	if v := q.Get("skip"); v != "" {
		if p.Skip, err = strconv.Atoi(v); err != nil || p.Skip < 0 {
			return nil, errors.New("skip must be a non-negative integer")
		}
	}
	if v := q.Get("take"); v != "" {
		if p.Take, err = strconv.Atoi(v); err != nil || p.Take <= 0 {
			return nil, errors.New("take must be a positive integer")
		}
	}
	return p, nil
}

// passthroughQuery copies the request query in the order the caller wrote it.
func passthroughQuery(r *http.Request) *superagent.Query {
	q := superagent.NewQuery()
	for _, part := range strings.Split(r.URL.RawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		q.Set(key, val)
	}
	return q
}
