package superagent

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ── LLMs ─────────────────────────────────────────────────────

func (c *Client) GetLLMs(ctx context.Context) (*Response[[]models.LLM], error) {
	return call[[]models.LLM](ctx, c, http.MethodGet, "/llms", nil, nil)
}

func (c *Client) CreateLLM(ctx context.Context, payload any) (*Response[models.LLM], error) {
	return call[models.LLM](ctx, c, http.MethodPost, "/llms", payload, nil)
}

func (c *Client) PatchLLM(ctx context.Context, id string, payload any) (*Response[models.LLM], error) {
	return call[models.LLM](ctx, c, http.MethodPatch, path("/llms/%s", id), payload, nil)
}

// ── Tools ────────────────────────────────────────────────────

// GetTools lists tools. A nil page requests skip=0&take=50.
func (c *Client) GetTools(ctx context.Context, page *Pagination) (*Response[[]models.Tool], error) {
	return call[[]models.Tool](ctx, c, http.MethodGet, "/tools", nil, page.query(defaultPage))
}

func (c *Client) CreateTool(ctx context.Context, payload any) (*Response[models.Tool], error) {
	return call[models.Tool](ctx, c, http.MethodPost, "/tools", payload, nil)
}

func (c *Client) PatchTool(ctx context.Context, id string, payload any) (*Response[models.Tool], error) {
	return call[models.Tool](ctx, c, http.MethodPatch, path("/tools/%s", id), payload, nil)
}

func (c *Client) DeleteTool(ctx context.Context, id string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/tools/%s", id), nil, nil)
}

// ── Datasources ──────────────────────────────────────────────

// GetDatasources lists datasources. A nil page requests skip=0&take=50.
func (c *Client) GetDatasources(ctx context.Context, page *Pagination) (*Response[[]models.Datasource], error) {
	return call[[]models.Datasource](ctx, c, http.MethodGet, "/datasources", nil, page.query(defaultPage))
}

func (c *Client) CreateDatasource(ctx context.Context, payload any) (*Response[models.Datasource], error) {
	return call[models.Datasource](ctx, c, http.MethodPost, "/datasources", payload, nil)
}

func (c *Client) PatchDatasource(ctx context.Context, id string, payload any) (*Response[models.Datasource], error) {
	return call[models.Datasource](ctx, c, http.MethodPatch, path("/datasources/%s", id), payload, nil)
}

func (c *Client) DeleteDatasource(ctx context.Context, id string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/datasources/%s", id), nil, nil)
}

// ── Vector databases ─────────────────────────────────────────

func (c *Client) GetVectorDbs(ctx context.Context) (*Response[[]models.VectorDb], error) {
	return call[[]models.VectorDb](ctx, c, http.MethodGet, "/vector-dbs", nil, nil)
}

func (c *Client) CreateVectorDb(ctx context.Context, payload any) (*Response[models.VectorDb], error) {
	return call[models.VectorDb](ctx, c, http.MethodPost, "/vector-dbs", payload, nil)
}

func (c *Client) PatchVectorDb(ctx context.Context, id string, payload any) (*Response[models.VectorDb], error) {
	return call[models.VectorDb](ctx, c, http.MethodPatch, path("/vector-dbs/%s", id), payload, nil)
}

// ── API keys ─────────────────────────────────────────────────

func (c *Client) GetAPIKeys(ctx context.Context) (*Response[[]models.APIKey], error) {
	return call[[]models.APIKey](ctx, c, http.MethodGet, "/api-keys", nil, nil)
}

func (c *Client) CreateAPIKey(ctx context.Context, payload any) (*Response[models.APIKey], error) {
	return call[models.APIKey](ctx, c, http.MethodPost, "/api-keys", payload, nil)
}

func (c *Client) DeleteAPIKey(ctx context.Context, id string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/api-keys/%s", id), nil, nil)
}

// ── API users ────────────────────────────────────────────────

func (c *Client) GetAPIUser(ctx context.Context) (*Response[models.APIUser], error) {
	return call[models.APIUser](ctx, c, http.MethodGet, "/api-users/me", nil, nil)
}

// CreateAPIUser provisions a remote API user. The returned Data.Token is the
// bearer token to store in the caller's profile.
func (c *Client) CreateAPIUser(ctx context.Context, payload any) (*Response[models.APIUser], error) {
	return call[models.APIUser](ctx, c, http.MethodPost, "/api-users", payload, nil)
}

func (c *Client) PatchAPIUser(ctx context.Context, payload any) (*Response[models.APIUser], error) {
	return call[models.APIUser](ctx, c, http.MethodPatch, "/api-users/me", payload, nil)
}

// IdentifyUser forwards identifying traits of the signed-in user.
func (c *Client) IdentifyUser(ctx context.Context, traits any) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodPost, "/api-users/identify", traits, nil)
}

// ── Runs ─────────────────────────────────────────────────────

// GetRuns lists runs. The query is forwarded as given (agent_id, limit, ...).
func (c *Client) GetRuns(ctx context.Context, query *Query) (*Response[[]models.Run], error) {
	return call[[]models.Run](ctx, c, http.MethodGet, "/runs", nil, query)
}
