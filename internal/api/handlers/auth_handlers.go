package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/auth"
	"github.com/superagent-ai/superagent/console/internal/sessions"
)

const (
	// pkceCookie holds the PKCE verifier between the redirect out to the
	// provider and the callback.
	pkceCookie = "sa_pkce"
	// stateCookie holds the sign-in state the callback resumes from.
	stateCookie = "sa_auth_state"
	pkceTTL     = 10 * time.Minute
)

// ══════════════════════════════════════════════════════════════
// ── Sign-in ──────────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

type otpRequest struct {
	Email string `json:"email"`
}

// RequestOTP emails a sign-in link.
func (h *Handlers) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	challenge, ok := h.startPKCE(w)
	if !ok {
		return
	}
	out, err := h.Flow.RequestOTP(r.Context(), req.Email, h.callbackURL(r), challenge)
	if err != nil {
		h.respondFlowError(w, out, err)
		return
	}
	h.setCookie(w, stateCookie, string(out.State), pkceTTL)
	respondJSON(w, http.StatusOK, out)
}

// StartOAuth redirects the browser to the provider's authorize page.
func (h *Handlers) StartOAuth(w http.ResponseWriter, r *http.Request) {
	challenge, ok := h.startPKCE(w)
	if !ok {
		return
	}
	out, err := h.Flow.StartOAuth(chi.URLParam(r, "provider"), h.callbackURL(r), challenge)
	if err != nil {
		h.respondFlowError(w, out, err)
		return
	}
	h.setCookie(w, stateCookie, string(out.State), pkceTTL)
	http.Redirect(w, r, out.Redirect, http.StatusFound)
}

// Callback completes an OAuth or magic-link sign-in. Failures land on the
// sign-in page with the provider's message as a notification.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if desc := q.Get("error_description"); desc != "" {
		h.redirectWithNotification(w, r, desc)
		return
	}
	code := q.Get("code")
	if code == "" {
		h.redirectWithNotification(w, r, "Missing sign-in code")
		return
	}

	verifier := ""
	if c, err := r.Cookie(pkceCookie); err == nil {
		verifier = c.Value
	}
	from := auth.StateSignedOut
	if c, err := r.Cookie(stateCookie); err == nil {
		from = auth.State(c.Value)
	}
	h.clearCookie(w, pkceCookie)
	h.clearCookie(w, stateCookie)

	out, err := h.Flow.CompleteCode(r.Context(), from, code, verifier)
	if err != nil {
		log.Debug().Err(err).Str("from", string(from)).Msg("Sign-in callback failed")
		msg := out.Notification
		if msg == "" {
			msg = "Sign in failed, please try again"
		}
		h.redirectWithNotification(w, r, msg)
		return
	}
	h.setSessionCookie(w, out.Session)
	http.Redirect(w, r, withNotification(out.Redirect, out.Notification), http.StatusFound)
}

type verifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// VerifyOTP completes an email sign-in with the code from the email.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		respondError(w, http.StatusBadRequest, "Enter the code from the email")
		return
	}
	out, err := h.Flow.CompleteOTP(r.Context(), req.Email, req.Token)
	if err != nil {
		h.respondFlowError(w, out, err)
		return
	}
	h.clearCookie(w, stateCookie)
	h.setSessionCookie(w, out.Session)
	respondJSON(w, http.StatusOK, out)
}

// SignOut drops the console session and revokes the provider session.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(h.Config.Auth.SessionCookie)
	h.clearCookie(w, h.Config.Auth.SessionCookie)
	if err != nil || c.Value == "" {
		respondJSON(w, http.StatusOK, auth.Outcome{State: auth.StateSignedOut, Redirect: "/"})
		return
	}
	out, err := h.Flow.SignOut(r.Context(), c.Value)
	if err != nil {
		log.Warn().Err(err).Msg("Sign out failed")
	}
	respondJSON(w, http.StatusOK, out)
}

// ── Helpers ─────────────────────────────────────────────────

func (h *Handlers) respondFlowError(w http.ResponseWriter, out auth.Outcome, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrUnsupportedProvider):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrIllegalTransition):
		status = http.StatusConflict
	}
	var perr *auth.ProviderError
	if errors.As(err, &perr) && perr.StatusCode >= 400 && perr.StatusCode < 500 {
		status = perr.StatusCode
	}
	msg := out.Notification
	if msg == "" {
		msg = err.Error()
	}
	respondError(w, status, msg)
}

func (h *Handlers) startPKCE(w http.ResponseWriter) (challenge string, ok bool) {
	verifier, challenge, err := auth.NewPKCE()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not start sign in")
		return "", false
	}
	h.setCookie(w, pkceCookie, verifier, pkceTTL)
	return challenge, true
}

// callbackURL is where the provider sends the browser back to.
func (h *Handlers) callbackURL(r *http.Request) string {
	base := strings.TrimRight(h.Config.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/auth/callback"
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, s *sessions.Session) {
	if s == nil {
		return
	}
	h.setCookie(w, h.Config.Auth.SessionCookie, s.ID, time.Until(s.ExpiresAt))
}

func (h *Handlers) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.Config.PublicURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *Handlers) redirectWithNotification(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, withNotification("/", msg), http.StatusFound)
}

func withNotification(target, msg string) string {
	if msg == "" {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "notification=" + url.QueryEscape(msg)
}
