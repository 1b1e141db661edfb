package superagent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ── Workflows ────────────────────────────────────────────────

// GetWorkflows lists workflows. The query is forwarded as given; a nil query
// sends none and the remote defaults apply.
func (c *Client) GetWorkflows(ctx context.Context, query *Query) (*Response[[]models.Workflow], error) {
	return call[[]models.Workflow](ctx, c, http.MethodGet, "/workflows", nil, query)
}

func (c *Client) GetWorkflowByID(ctx context.Context, id string) (*Response[models.Workflow], error) {
	return call[models.Workflow](ctx, c, http.MethodGet, path("/workflows/%s", id), nil, nil)
}

func (c *Client) CreateWorkflow(ctx context.Context, payload any) (*Response[models.Workflow], error) {
	return call[models.Workflow](ctx, c, http.MethodPost, "/workflows", payload, nil)
}

func (c *Client) PatchWorkflow(ctx context.Context, id string, payload any) (*Response[models.Workflow], error) {
	return call[models.Workflow](ctx, c, http.MethodPatch, path("/workflows/%s", id), payload, nil)
}

func (c *Client) DeleteWorkflow(ctx context.Context, id string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/workflows/%s", id), nil, nil)
}

func (c *Client) InvokeWorkflow(ctx context.Context, id string, payload any) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodPost, path("/workflows/%s/invoke", id), payload, nil)
}

// ── Workflow steps ───────────────────────────────────────────

func (c *Client) GetWorkflowSteps(ctx context.Context, workflowID string) (*Response[[]models.WorkflowStep], error) {
	return call[[]models.WorkflowStep](ctx, c, http.MethodGet, path("/workflows/%s/steps", workflowID), nil, nil)
}

func (c *Client) CreateWorkflowStep(ctx context.Context, workflowID string, payload any) (*Response[models.WorkflowStep], error) {
	return call[models.WorkflowStep](ctx, c, http.MethodPost, path("/workflows/%s/steps", workflowID), payload, nil)
}

func (c *Client) PatchWorkflowStep(ctx context.Context, workflowID, stepID string, payload any) (*Response[models.WorkflowStep], error) {
	return call[models.WorkflowStep](ctx, c, http.MethodPatch, path("/workflows/%s/steps/%s", workflowID, stepID), payload, nil)
}

func (c *Client) DeleteWorkflowStep(ctx context.Context, workflowID, stepID string) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, http.MethodDelete, path("/workflows/%s/steps/%s", workflowID, stepID), nil, nil)
}

// GenerateWorkflow uploads a YAML workflow definition. It bypasses Fetch: the
// body is sent as application/x-yaml and the raw response is returned
// undecoded. The caller must close resp.Body.
func (c *Client) GenerateWorkflow(ctx context.Context, workflowID, yamlDoc string) (*http.Response, error) {
	u, err := c.URL(path("/workflows/%s/config", workflowID), nil)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(yamlDoc))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, "application/x-yaml", nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}
