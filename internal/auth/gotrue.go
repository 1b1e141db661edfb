package auth

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType is an auth state change emitted by the GoTrue client.
type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to every subscriber after a state change.
type Event struct {
	Type    EventType
	Session *AuthSession
}

// Listener receives auth state changes. Listeners run synchronously on the
// goroutine that caused the change.
type Listener func(ctx context.Context, ev Event)

// User is the auth provider's user record.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// AuthSession is the token bundle returned by a completed sign-in.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// ProviderError is an error response from the auth provider. Message is the
// one-line notification shown to the user.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider returned %d: %s", e.StatusCode, e.Message)
}

// GoTrue is a minimal client for the Supabase auth (GoTrue) REST API.
type GoTrue struct {
	baseURL string
	anonKey string
	http    *http.Client

	mu        sync.RWMutex
	listeners []Listener
}

// GoTrueOption configures a GoTrue client.
type GoTrueOption func(*GoTrue)

// WithGoTrueHTTPClient replaces the underlying *http.Client.
func WithGoTrueHTTPClient(hc *http.Client) GoTrueOption {
	return func(g *GoTrue) {
		if hc != nil {
			g.http = hc
		}
	}
}

// NewGoTrue creates a client for the project at supabaseURL.
func NewGoTrue(supabaseURL, anonKey string, opts ...GoTrueOption) *GoTrue {
	g := &GoTrue{
		baseURL: strings.TrimRight(supabaseURL, "/") + "/auth/v1",
		anonKey: anonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports whether the client has a project to talk to.
func (g *GoTrue) Enabled() bool {
	return g.anonKey != "" && g.baseURL != "/auth/v1"
}

// OnAuthStateChange registers a listener and returns a func that removes it.
func (g *GoTrue) OnAuthStateChange(l Listener) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
	idx := len(g.listeners) - 1
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if idx < len(g.listeners) {
			g.listeners[idx] = nil
		}
	}
}

func (g *GoTrue) emit(ctx context.Context, ev Event) {
	g.mu.RLock()
	listeners := make([]Listener, 0, len(g.listeners))
	for _, l := range g.listeners {
		if l != nil {
			listeners = append(listeners, l)
		}
	}
	g.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, ev)
	}
}

// SignInWithOTP asks the provider to email a one-time sign-in link.
// redirectTo is where the link lands; challenge is the PKCE code challenge.
func (g *GoTrue) SignInWithOTP(ctx context.Context, email, redirectTo, challenge string) error {
	body := map[string]any{
		"email":       email,
		"create_user": true,
	}
	if challenge != "" {
		body["code_challenge"] = challenge
		body["code_challenge_method"] = "s256"
	}
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return g.do(ctx, http.MethodPost, "/otp", q, "", body, nil)
}

// AuthorizeURL is where the browser is sent to start an OAuth sign-in.
func (g *GoTrue) AuthorizeURL(provider, redirectTo, challenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	if challenge != "" {
		q.Set("code_challenge", challenge)
		q.Set("code_challenge_method", "s256")
	}
	return g.baseURL + "/authorize?" + q.Encode()
}

// ExchangeCode completes a PKCE sign-in (OAuth or magic link) and emits
// SIGNED_IN.
func (g *GoTrue) ExchangeCode(ctx context.Context, code, verifier string) (*AuthSession, error) {
	var sess AuthSession
	q := url.Values{"grant_type": {"pkce"}}
	body := map[string]string{"auth_code": code, "code_verifier": verifier}
	if err := g.do(ctx, http.MethodPost, "/token", q, "", body, &sess); err != nil {
		return nil, err
	}
	g.emit(ctx, Event{Type: EventSignedIn, Session: &sess})
	return &sess, nil
}

// VerifyOTP completes a sign-in with the code from the OTP email and emits
// SIGNED_IN.
func (g *GoTrue) VerifyOTP(ctx context.Context, email, token string) (*AuthSession, error) {
	var sess AuthSession
	body := map[string]string{"type": "email", "email": email, "token": token}
	if err := g.do(ctx, http.MethodPost, "/verify", nil, "", body, &sess); err != nil {
		return nil, err
	}
	g.emit(ctx, Event{Type: EventSignedIn, Session: &sess})
	return &sess, nil
}

// GetUser returns the user behind an access token.
func (g *GoTrue) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := g.do(ctx, http.MethodGet, "/user", nil, accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignOut revokes the access token and emits SIGNED_OUT. The event is
// emitted even when revocation fails so local state is always cleared.
func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	err := g.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil, nil)
	g.emit(ctx, Event{Type: EventSignedOut})
	return err
}

func (g *GoTrue) do(ctx context.Context, method, path string, q url.Values, bearer string, body, out any) error {
	u := g.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.anonKey)
	if bearer == "" {
		bearer = g.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		perr := parseProviderError(resp.StatusCode, raw)
		log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("code", perr.Code).Msg("Auth provider error")
		return perr
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// parseProviderError understands both GoTrue error shapes:
// {"code","msg"} / {"error_code","msg"} and {"error","error_description"}.
func parseProviderError(status int, raw []byte) *ProviderError {
	var body struct {
		Code             any    `json:"code"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(raw, &body)

	perr := &ProviderError{StatusCode: status}
	switch {
	case body.ErrorCode != "":
		perr.Code = body.ErrorCode
	case body.Error != "":
		perr.Code = body.Error
	case body.Code != nil:
		perr.Code = fmt.Sprint(body.Code)
	}
	for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if m != "" {
			perr.Message = m
			break
		}
	}
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}

// NewPKCE returns a random code verifier and its S256 challenge.
func NewPKCE() (verifier, challenge string, err error) {
	verifier, err = RandomToken(32)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// RandomToken returns n random bytes encoded as unpadded base64url.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
