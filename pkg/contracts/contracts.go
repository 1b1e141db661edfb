// Package contracts defines the service interfaces of the Superagent console.
//
// Handlers, the sign-in flow and the reconciler depend on these interfaces
// rather than on concrete types, so a test (or an alternative backend) can
// swap an implementation in the wiring code without touching callers.
package contracts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/models"
	"github.com/superagent-ai/superagent/console/pkg/superagent"
)

// ProfileStore is a type alias for the internal profile store interface.
type ProfileStore = store.ProfileStore

// ErrNotFound is a type alias for the internal ErrNotFound error.
type ErrNotFound = store.ErrNotFound

// ClientFactory builds a resource client scoped to one bearer token.
type ClientFactory func(token string) ResourceClient

// ── Resource client ─────────────────────────────────────────

// ResourceClient is the typed Superagent REST client.
// Implementation: pkg/superagent.Client
type ResourceClient interface {
	AgentClient
	LLMClient
	ToolClient
	DatasourceClient
	WorkflowClient
	VectorDbClient
	APIKeyClient
	APIUserClient

	GetRuns(ctx context.Context, query *superagent.Query) (*superagent.Response[[]models.Run], error)
}

type AgentClient interface {
	GetAgents(ctx context.Context, page *superagent.Pagination) (*superagent.Response[[]models.Agent], error)
	GetAgentByID(ctx context.Context, id string) (*superagent.Response[models.Agent], error)
	CreateAgent(ctx context.Context, payload any) (*superagent.Response[models.Agent], error)
	DeleteAgentByID(ctx context.Context, id string) (*superagent.Response[json.RawMessage], error)
	InvokeAgent(ctx context.Context, id string, payload any) (*superagent.Response[json.RawMessage], error)
	AgentBindingClient
}

// AgentBindingClient is the subset of calls the settings reconciler issues.
type AgentBindingClient interface {
	PatchAgent(ctx context.Context, id string, payload any) (*superagent.Response[models.Agent], error)
	CreateAgentLLM(ctx context.Context, agentID, llmID string) (*superagent.Response[models.AgentLLM], error)
	DeleteAgentLLM(ctx context.Context, agentID, llmID string) (*superagent.Response[json.RawMessage], error)
	CreateAgentTool(ctx context.Context, agentID, toolID string) (*superagent.Response[models.AgentTool], error)
	DeleteAgentTool(ctx context.Context, agentID, toolID string) (*superagent.Response[json.RawMessage], error)
	CreateAgentDatasource(ctx context.Context, agentID, datasourceID string) (*superagent.Response[models.AgentDatasource], error)
	DeleteAgentDatasource(ctx context.Context, agentID, datasourceID string) (*superagent.Response[json.RawMessage], error)
}

type LLMClient interface {
	GetLLMs(ctx context.Context) (*superagent.Response[[]models.LLM], error)
	CreateLLM(ctx context.Context, payload any) (*superagent.Response[models.LLM], error)
	PatchLLM(ctx context.Context, id string, payload any) (*superagent.Response[models.LLM], error)
}

type ToolClient interface {
	GetTools(ctx context.Context, page *superagent.Pagination) (*superagent.Response[[]models.Tool], error)
	CreateTool(ctx context.Context, payload any) (*superagent.Response[models.Tool], error)
	PatchTool(ctx context.Context, id string, payload any) (*superagent.Response[models.Tool], error)
	DeleteTool(ctx context.Context, id string) (*superagent.Response[json.RawMessage], error)
}

type DatasourceClient interface {
	GetDatasources(ctx context.Context, page *superagent.Pagination) (*superagent.Response[[]models.Datasource], error)
	CreateDatasource(ctx context.Context, payload any) (*superagent.Response[models.Datasource], error)
	PatchDatasource(ctx context.Context, id string, payload any) (*superagent.Response[models.Datasource], error)
	DeleteDatasource(ctx context.Context, id string) (*superagent.Response[json.RawMessage], error)
}

type WorkflowClient interface {
	GetWorkflows(ctx context.Context, query *superagent.Query) (*superagent.Response[[]models.Workflow], error)
	GetWorkflowByID(ctx context.Context, id string) (*superagent.Response[models.Workflow], error)
	CreateWorkflow(ctx context.Context, payload any) (*superagent.Response[models.Workflow], error)
	PatchWorkflow(ctx context.Context, id string, payload any) (*superagent.Response[models.Workflow], error)
	DeleteWorkflow(ctx context.Context, id string) (*superagent.Response[json.RawMessage], error)
	InvokeWorkflow(ctx context.Context, id string, payload any) (*superagent.Response[json.RawMessage], error)
	GetWorkflowSteps(ctx context.Context, workflowID string) (*superagent.Response[[]models.WorkflowStep], error)
	CreateWorkflowStep(ctx context.Context, workflowID string, payload any) (*superagent.Response[models.WorkflowStep], error)
	PatchWorkflowStep(ctx context.Context, workflowID, stepID string, payload any) (*superagent.Response[models.WorkflowStep], error)
	DeleteWorkflowStep(ctx context.Context, workflowID, stepID string) (*superagent.Response[json.RawMessage], error)
	GenerateWorkflow(ctx context.Context, workflowID, yamlDoc string) (*http.Response, error)
}

type VectorDbClient interface {
	GetVectorDbs(ctx context.Context) (*superagent.Response[[]models.VectorDb], error)
	CreateVectorDb(ctx context.Context, payload any) (*superagent.Response[models.VectorDb], error)
	PatchVectorDb(ctx context.Context, id string, payload any) (*superagent.Response[models.VectorDb], error)
}

type APIKeyClient interface {
	GetAPIKeys(ctx context.Context) (*superagent.Response[[]models.APIKey], error)
	CreateAPIKey(ctx context.Context, payload any) (*superagent.Response[models.APIKey], error)
	DeleteAPIKey(ctx context.Context, id string) (*superagent.Response[json.RawMessage], error)
}

type APIUserClient interface {
	GetAPIUser(ctx context.Context) (*superagent.Response[models.APIUser], error)
	CreateAPIUser(ctx context.Context, payload any) (*superagent.Response[models.APIUser], error)
	PatchAPIUser(ctx context.Context, payload any) (*superagent.Response[models.APIUser], error)
	IdentifyUser(ctx context.Context, traits any) (*superagent.Response[json.RawMessage], error)
}

var _ ResourceClient = (*superagent.Client)(nil)
