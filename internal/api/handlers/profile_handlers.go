package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/onboarding"
	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	pkgmw "github.com/superagent-ai/superagent/console/pkg/middleware"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

// sessionIdentity returns the signed-in user, writing 403 for bearer and
// anonymous callers, which have no profile.
func sessionIdentity(w http.ResponseWriter, r *http.Request) (*contracts.Identity, bool) {
	id := pkgmw.GetIdentity(r.Context())
	if id == nil || id.Provider != "session" {
		respondError(w, http.StatusForbidden, "Sign in to manage your profile")
		return nil, false
	}
	return id, true
}

type profileResponse struct {
	Email   string          `json:"email,omitempty"`
	Profile *models.Profile `json:"profile"`
}

// GetProfile returns the caller's profile. A user who has not onboarded yet
// gets a null profile rather than 404 so the dashboard can show onboarding.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIdentity(w, r)
	if !ok {
		return
	}
	p := pkgmw.GetProfile(r.Context())
	if p == nil {
		var err error
		p, err = h.Profiles.GetProfile(r.Context(), id.Subject)
		var nf *store.ErrNotFound
		if err != nil && !errors.As(err, &nf) {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, profileResponse{Email: id.Email, Profile: redactProfile(p)})
}

type profileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Company   *string `json:"company"`
}

// UpdateProfile changes the caller's names and company. The API key is only
// ever set by onboarding.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIdentity(w, r)
	if !ok {
		return
	}
	var req profileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.Profiles.GetProfile(r.Context(), id.Subject)
	var nf *store.ErrNotFound
	switch {
	case errors.As(err, &nf):
		p = &models.Profile{UserID: id.Subject}
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Company != nil {
		p.Company = *req.Company
	}
	if err := h.Profiles.UpsertProfile(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Info().Str("user_id", id.Subject).Msg("Profile updated")
	respondJSON(w, http.StatusOK, profileResponse{Email: id.Email, Profile: redactProfile(p)})
}

// Onboard provisions the caller's Superagent API user.
func (h *Handlers) Onboard(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIdentity(w, r)
	if !ok {
		return
	}
	var form onboarding.Form
	if !decodeJSON(w, r, &form) {
		return
	}

	p, err := h.Onboarding.Onboard(r.Context(), id.Subject, id.Email, &form)
	switch {
	case errors.Is(err, onboarding.ErrAlreadyOnboarded):
		respondError(w, http.StatusConflict, "You have already completed onboarding")
		return
	case err != nil:
		if isValidation(err) {
			respondValidation(w, err)
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, profileResponse{Email: id.Email, Profile: redactProfile(p)})
}

// redactProfile keeps the API key out of responses; the dashboard only needs
// to know whether one is set.
func redactProfile(p *models.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if cp.APIKey != "" {
		cp.APIKey = "••••" + lastN(cp.APIKey, 4)
	}
	return &cp
}

func lastN(s string, n int) string {
	if len(s) <= 2*n {
		return ""
	}
	return s[len(s)-n:]
}
