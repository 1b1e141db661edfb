package superagent

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ── Agents ───────────────────────────────────────────────────

// GetAgents lists agents. A nil page requests skip=0&take=300.
func (c *Client) GetAgents(ctx context.Context, page *Pagination) (*Response[[]models.Agent], error) {
	return call[[]models.Agent](ctx, c, http.MethodGet, "/agents", nil, page.query(agentsPage))
}

func (c *Client) GetAgentByID(ctx context.Context, id string) (*Response[models.Agent], error) {
	return call[models.Agent](ctx, c, http.MethodGet, path("/agents/%s", id), nil, nil)
}

func (c *Client) CreateAgent(ctx context.Context, payload any) (*Response[models.Agent], error) {
	return call[models.Agent](ctx, c, http.MethodPost, "/agents", payload, nil)
}

func (c *Client) PatchAgent(ctx context.Context, id string, payload any) (*Response[models.Agent], error) {
	return call[models.Agent](ctx, c, http.MethodPatch, path("/agents/%s", id), payload, nil)
}

func (c *Client) DeleteAgentByID(ctx context.Context, id string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/agents/%s", id), nil, nil)
}

// InvokeAgent runs the agent once. Streaming responses are not decoded here;
// payloads asking for enableStreaming should go through Fetch directly.
func (c *Client) InvokeAgent(ctx context.Context, id string, payload any) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodPost, path("/agents/%s/invoke", id), payload, nil)
}

// ── Agent bindings ───────────────────────────────────────────

func (c *Client) CreateAgentLLM(ctx context.Context, agentID, llmID string) (*Response[models.AgentLLM], error) {
	body := map[string]string{"llmId": llmID}
	return call[models.AgentLLM](ctx, c, http.MethodPost, path("/agents/%s/llms", agentID), body, nil)
}

func (c *Client) DeleteAgentLLM(ctx context.Context, agentID, llmID string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/agents/%s/llms/%s", agentID, llmID), nil, nil)
}

func (c *Client) CreateAgentTool(ctx context.Context, agentID, toolID string) (*Response[models.AgentTool], error) {
	body := map[string]string{"toolId": toolID}
	return call[models.AgentTool](ctx, c, http.MethodPost, path("/agents/%s/tools", agentID), body, nil)
}

func (c *Client) DeleteAgentTool(ctx context.Context, agentID, toolID string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/agents/%s/tools/%s", agentID, toolID), nil, nil)
}

func (c *Client) CreateAgentDatasource(ctx context.Context, agentID, datasourceID string) (*Response[models.AgentDatasource], error) {
	body := map[string]string{"datasourceId": datasourceID}
	return call[models.AgentDatasource](ctx, c, http.MethodPost, path("/agents/%s/datasources", agentID), body, nil)
}

func (c *Client) DeleteAgentDatasource(ctx context.Context, agentID, datasourceID string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/agents/%s/datasources/%s", agentID, datasourceID), nil, nil)
}
