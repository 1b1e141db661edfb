package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/superagent-ai/superagent/console/internal/auth"
)

func newGoTrueServer(t *testing.T, handler http.HandlerFunc) *auth.GoTrue {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return auth.NewGoTrue(srv.URL, "anon-key", auth.WithGoTrueHTTPClient(srv.Client()))
}

func TestGoTrue_SignInWithOTP(t *testing.T) {
	var (
		gotPath  string
		gotQuery url.Values
		gotKey   string
		gotBody  map[string]any
	)
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	err := g.SignInWithOTP(context.Background(), "ada@example.com", "http://localhost:3000/auth/callback", "chal")
	if err != nil {
		t.Fatalf("SignInWithOTP: %v", err)
	}
	if gotPath != "/auth/v1/otp" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery.Get("redirect_to") != "http://localhost:3000/auth/callback" {
		t.Errorf("redirect_to = %q", gotQuery.Get("redirect_to"))
	}
	if gotKey != "anon-key" {
		t.Errorf("apikey header = %q", gotKey)
	}
	want := map[string]any{
		"email":                 "ada@example.com",
		"create_user":           true,
		"code_challenge":        "chal",
		"code_challenge_method": "s256",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("body (-want +got):\n%s", diff)
	}
}

func TestGoTrue_ExchangeCodeEmitsSignedIn(t *testing.T) {
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "pkce" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","user":{"id":"user-1","email":"ada@example.com"}}`))
	})

	var events []auth.Event
	unsubscribe := g.OnAuthStateChange(func(_ context.Context, ev auth.Event) {
		events = append(events, ev)
	})

	sess, err := g.ExchangeCode(context.Background(), "code", "verifier")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if sess.AccessToken != "at" || sess.User.ID != "user-1" {
		t.Errorf("session = %+v", sess)
	}
	if len(events) != 1 || events[0].Type != auth.EventSignedIn {
		t.Fatalf("events = %+v, want one SIGNED_IN", events)
	}

	unsubscribe()
	if _, err := g.ExchangeCode(context.Background(), "code", "verifier"); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestGoTrue_ProviderError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"msg shape", 429, `{"code":429,"error_code":"over_email_send_rate_limit","msg":"Email rate limit exceeded"}`, "over_email_send_rate_limit", "Email rate limit exceeded"},
		{"oauth shape", 400, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, "invalid_grant", "Invalid login credentials"},
		{"empty body", 500, ``, "", "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := g.VerifyOTP(context.Background(), "ada@example.com", "123456")
			var perr *auth.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ProviderError", err)
			}
			if perr.StatusCode != tt.status || perr.Code != tt.wantCode || perr.Message != tt.wantMsg {
				t.Errorf("ProviderError = %+v", perr)
			}
		})
	}
}

func TestGoTrue_SignOutEmitsEvenOnFailure(t *testing.T) {
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	var got []auth.EventType
	g.OnAuthStateChange(func(_ context.Context, ev auth.Event) { got = append(got, ev.Type) })

	if err := g.SignOut(context.Background(), "at"); err == nil {
		t.Error("expected revocation error")
	}
	if diff := cmp.Diff([]auth.EventType{auth.EventSignedOut}, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestGoTrue_AuthorizeURL(t *testing.T) {
	g := auth.NewGoTrue("https://project.supabase.co/", "anon")
	raw := g.AuthorizeURL("github", "http://localhost:3000/auth/callback", "chal")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "project.supabase.co" || u.Path != "/auth/v1/authorize" {
		t.Errorf("url = %s", raw)
	}
	q := u.Query()
	if q.Get("provider") != "github" || q.Get("code_challenge") != "chal" || q.Get("code_challenge_method") != "s256" {
		t.Errorf("query = %v", q)
	}
}

func TestNewPKCE(t *testing.T) {
	verifier, challenge, err := auth.NewPKCE()
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256([]byte(verifier))
	if want := base64.RawURLEncoding.EncodeToString(sum[:]); challenge != want {
		t.Errorf("challenge = %q, want %q", challenge, want)
	}
	if len(verifier) < 43 {
		t.Errorf("verifier too short: %d", len(verifier))
	}
}

func TestGoTrue_Enabled(t *testing.T) {
	if auth.NewGoTrue("", "").Enabled() {
		t.Error("empty client should be disabled")
	}
	if !auth.NewGoTrue("https://project.supabase.co", "anon").Enabled() {
		t.Error("configured client should be enabled")
	}
}
