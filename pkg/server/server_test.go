package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/superagent-ai/superagent/console/internal/config"
	"github.com/superagent-ai/superagent/console/pkg/models"
	"github.com/superagent-ai/superagent/console/pkg/server"
)

// remoteCall is one request seen by the fake Superagent API.
type remoteCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// fakeRemote is a scripted Superagent API. Unscripted routes answer
// {"success": true, "data": null}.
type fakeRemote struct {
	mu     sync.Mutex
	calls  []remoteCall
	routes map[string]func(w http.ResponseWriter)
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	f.mu.Lock()
	f.calls = append(f.calls, remoteCall{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	route := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	if route != nil {
		route(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true,"data":null}`))
}

func (f *fakeRemote) Calls() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteCall(nil), f.calls...)
}

func jsonRoute(status int, body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

type harness struct {
	srv    *server.Server
	remote *fakeRemote
	url    string
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	remote := &fakeRemote{routes: map[string]func(http.ResponseWriter){}}
	remoteSrv := httptest.NewServer(remote)
	t.Cleanup(remoteSrv.Close)

	gotrue := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/verify":
			w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","user":{"id":"user-1","email":"ada@example.com"}}`))
		case "/auth/v1/otp", "/auth/v1/logout":
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(gotrue.Close)

	cfg := config.Default()
	cfg.API.URL = remoteSrv.URL + "/api/v1"
	cfg.Supabase.URL = gotrue.URL
	cfg.Supabase.AnonKey = "anon"
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := server.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	console := httptest.NewServer(srv.Handler)
	t.Cleanup(console.Close)
	return &harness{srv: srv, remote: remote, url: console.URL}
}

func (h *harness) do(t *testing.T, method, path, body string, header map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.url+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

var bearer = map[string]string{"Authorization": "Bearer sk-test"}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCORS_Credentials(t *testing.T) {
	t.Run("no public url", func(t *testing.T) {
		h := newHarness(t, nil)
		resp := h.do(t, http.MethodGet, "/health", "", map[string]string{"Origin": "https://elsewhere.example"})
		if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Allow-Credentials = %q, want empty", got)
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})
	t.Run("public url", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) { c.PublicURL = "https://console.example" })
		resp := h.do(t, http.MethodGet, "/health", "", map[string]string{"Origin": "https://console.example"})
		if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Allow-Credentials = %q, want true", got)
		}
		resp = h.do(t, http.MethodGet, "/health", "", map[string]string{"Origin": "https://elsewhere.example"})
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin for foreign origin = %q, want empty", got)
		}
	})
}

func TestAPI_RequiresAuth(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodGet, "/api/agents", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if n := len(h.remote.Calls()); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestAPI_ListAgentsDefaultsAndToken(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.routes["GET /agents"] = jsonRoute(200, `{"success":true,"data":[{"id":"a1","name":"Support"}],"total_pages":1}`)

	resp := h.do(t, http.MethodGet, "/api/agents", "", bearer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got struct {
		Success bool           `json:"success"`
		Data    []models.Agent `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Success || len(got.Data) != 1 || got.Data[0].ID != "a1" {
		t.Errorf("body = %+v", got)
	}

	want := []remoteCall{{Method: "GET", Path: "/agents", Query: "skip=0&take=300", Auth: "Bearer sk-test"}}
	if diff := cmp.Diff(want, h.remote.Calls()); diff != "" {
		t.Errorf("remote calls (-want +got):\n%s", diff)
	}
}

func TestAPI_RemoteStatusIsForwarded(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.routes["GET /agents/missing"] = jsonRoute(404, `{"success":false,"error":{"message":"Agent not found"}}`)

	resp := h.do(t, http.MethodGet, "/api/agents/missing", "", bearer)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAPI_StrictStatus(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.API.StrictStatus = true })
	h.remote.routes["GET /agents/missing"] = jsonRoute(404, `{"success":false}`)

	resp := h.do(t, http.MethodGet, "/api/agents/missing", "", bearer)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["notification"] == "" {
		t.Errorf("body = %v, want a notification", body)
	}
}

func TestAPI_AgentSettingsReconcile(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.routes["GET /agents/a1"] = jsonRoute(200, `{"success":true,"data":{
		"id":"a1","name":"Support",
		"llms":[{"llmId":"llm-openai","llm":{"id":"llm-openai","provider":"OPENAI"}}],
		"tools":[{"toolId":"A"},{"toolId":"B"}],
		"datasources":[{"datasourceId":"D"}]}}`)
	h.remote.routes["GET /llms"] = jsonRoute(200, `{"success":true,"data":[{"id":"llm-openai","provider":"OPENAI"}]}`)

	form := `{"name":"Support","description":"Helps","prompt":"Be kind","isActive":true,
		"llmProvider":"OPENAI","llmModel":"gpt-4","tools":["B","C"],"datasources":["D"]}`
	resp := h.do(t, http.MethodPut, "/api/agents/a1/settings", form, bearer)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}

	var got []string
	for _, c := range h.remote.Calls() {
		got = append(got, c.Method+" "+c.Path)
	}
	want := []string{
		"GET /agents/a1",
		"GET /llms",
		"PATCH /agents/a1",
		"POST /agents/a1/tools",
		"DELETE /agents/a1/tools/A",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remote calls (-want +got):\n%s", diff)
	}
	if body := h.remote.Calls()[3].Body; body != `{"toolId":"C"}` {
		t.Errorf("create tool body = %s", body)
	}
}

func TestAPI_AgentSettingsValidation(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodPut, "/api/agents/a1/settings", `{"name":""}`, bearer)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if n := len(h.remote.Calls()); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestAPI_WorkflowConfig(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.routes["POST /workflows/w1/config"] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("queued"))
	}

	resp := h.do(t, http.MethodPut, "/api/workflows/w1/config", "workflows: []\n", bearer)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("invalid yaml: status = %d, want 422", resp.StatusCode)
	}
	if n := len(h.remote.Calls()); n != 0 {
		t.Fatalf("remote calls = %d, want 0", n)
	}

	doc := `workflows:
  - superagent:
      name: Researcher
      llm: gpt-4o
      prompt: Find sources
`
	resp = h.do(t, http.MethodPut, "/api/workflows/w1/config", doc, bearer)
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
	if b, _ := io.ReadAll(resp.Body); string(b) != "queued" {
		t.Errorf("body = %q", b)
	}
	calls := h.remote.Calls()
	if len(calls) != 1 || calls[0].Body != doc {
		t.Errorf("remote calls = %+v", calls)
	}
}

func TestSignIn_IdentifiesAndOpensSession(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	if err := h.srv.Profiles.UpsertProfile(ctx, &models.Profile{
		UserID: "user-1", APIKey: "sk-user", FirstName: "Ada",
	}); err != nil {
		t.Fatal(err)
	}

	resp := h.do(t, http.MethodPost, "/auth/verify", `{"email":"ada@example.com","token":"123456"}`, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
	var out struct {
		State    string `json:"state"`
		Redirect string `json:"redirect"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.State != "signed-in" || out.Redirect != "/agents" {
		t.Errorf("outcome = %+v", out)
	}

	calls := h.remote.Calls()
	if len(calls) != 1 || calls[0].Path != "/api-users/identify" || calls[0].Auth != "Bearer sk-user" {
		t.Fatalf("remote calls = %+v, want one identify call", calls)
	}

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "sa_session" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("session cookie not set")
	}

	// The session now authenticates dashboard calls with the profile's key.
	resp = h.do(t, http.MethodGet, "/api/tools", "", map[string]string{"Cookie": "sa_session=" + session.Value})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tools: status = %d", resp.StatusCode)
	}
	last := h.remote.Calls()[1]
	if last.Path != "/tools" || last.Query != "skip=0&take=50" || last.Auth != "Bearer sk-user" {
		t.Errorf("tools call = %+v", last)
	}
}

func TestSignIn_WithoutAPIKeySkipsIdentify(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.do(t, http.MethodPost, "/auth/verify", `{"email":"ada@example.com","token":"123456"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := len(h.remote.Calls()); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestSignIn_InvalidEmail(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodPost, "/auth/otp", `{"email":"nope"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestOAuthRedirect(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodGet, "/auth/oauth/github", "", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.Contains(loc, "/auth/v1/authorize?") || !strings.Contains(loc, "provider=github") {
		t.Errorf("Location = %q", loc)
	}
}
