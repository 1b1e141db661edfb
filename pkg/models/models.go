// Package models holds the resource types exchanged with the Superagent REST API
// and the console's own Profile record.
//
// Every identity here is assigned by the remote API (or, for Profile, by the
// auth provider). The console never generates one locally.
package models

import (
	"encoding/json"
	"time"
)

// ── Agent ────────────────────────────────────────────────────

type Agent struct {
	ID             string            `json:"id"`
	Type           string            `json:"type,omitempty"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Prompt         string            `json:"prompt,omitempty"`
	InitialMessage string            `json:"initialMessage,omitempty"`
	Avatar         string            `json:"avatar,omitempty"`
	IsActive       bool              `json:"isActive"`
	LLMModel       string            `json:"llmModel,omitempty"`
	OutputSchema   string            `json:"outputSchema,omitempty"`
	Metadata       json.RawMessage   `json:"metadata,omitempty"`
	APIUserID      string            `json:"apiUserId,omitempty"`
	LLMs           []AgentLLM        `json:"llms,omitempty"`
	Tools          []AgentTool       `json:"tools,omitempty"`
	Datasources    []AgentDatasource `json:"datasources,omitempty"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time        `json:"updatedAt,omitempty"`
}

// AgentLLM is the join resource binding an LLM to an agent.
type AgentLLM struct {
	AgentID   string     `json:"agentId"`
	LLMID     string     `json:"llmId"`
	LLM       LLM        `json:"llm"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AgentTool is the join resource binding a tool to an agent.
type AgentTool struct {
	AgentID   string     `json:"agentId"`
	ToolID    string     `json:"toolId"`
	Tool      Tool       `json:"tool"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AgentDatasource is the join resource binding a datasource to an agent.
type AgentDatasource struct {
	AgentID      string     `json:"agentId"`
	DatasourceID string     `json:"datasourceId"`
	Datasource   Datasource `json:"datasource"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// ToolIDs returns the identities of the tools currently bound to the agent.
func (a *Agent) ToolIDs() []string {
	ids := make([]string, 0, len(a.Tools))
	for _, t := range a.Tools {
		id := t.ToolID
		if id == "" {
			id = t.Tool.ID
		}
		ids = append(ids, id)
	}
	return ids
}

// DatasourceIDs returns the identities of the datasources currently bound to the agent.
func (a *Agent) DatasourceIDs() []string {
	ids := make([]string, 0, len(a.Datasources))
	for _, d := range a.Datasources {
		id := d.DatasourceID
		if id == "" {
			id = d.Datasource.ID
		}
		ids = append(ids, id)
	}
	return ids
}

// CurrentLLM returns the first bound LLM, or nil when the agent has none.
func (a *Agent) CurrentLLM() *LLM {
	if len(a.LLMs) == 0 {
		return nil
	}
	llm := a.LLMs[0].LLM
	if llm.ID == "" {
		llm.ID = a.LLMs[0].LLMID
	}
	return &llm
}

// ── LLM ──────────────────────────────────────────────────────

type LLMProvider string

const (
	LLMProviderOpenAI      LLMProvider = "OPENAI"
	LLMProviderAzure       LLMProvider = "AZURE_OPENAI"
	LLMProviderHuggingFace LLMProvider = "HUGGINGFACE"
	LLMProviderPerplexity  LLMProvider = "PERPLEXITY"
	LLMProviderTogetherAI  LLMProvider = "TOGETHER_AI"
	LLMProviderAnthropic   LLMProvider = "ANTHROPIC"
	LLMProviderBedrock     LLMProvider = "BEDROCK"
	LLMProviderGroq        LLMProvider = "GROQ"
	LLMProviderMistral     LLMProvider = "MISTRAL"
	LLMProviderCohere      LLMProvider = "COHERE_CHAT"
)

type LLM struct {
	ID        string          `json:"id"`
	Provider  LLMProvider     `json:"provider"`
	APIKey    string          `json:"apiKey,omitempty"`
	Options   json.RawMessage `json:"options,omitempty"`
	APIUserID string          `json:"apiUserId,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// ── Tool ─────────────────────────────────────────────────────

type Tool struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Type         string          `json:"type"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	ReturnDirect bool            `json:"returnDirect"`
	APIUserID    string          `json:"apiUserId,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

// ── Datasource ───────────────────────────────────────────────

type DatasourceStatus string

const (
	DatasourceInProgress DatasourceStatus = "IN_PROGRESS"
	DatasourceDone       DatasourceStatus = "DONE"
	DatasourceFailed     DatasourceStatus = "FAILED"
)

type Datasource struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Type        string           `json:"type"`
	Content     string           `json:"content,omitempty"`
	URL         string           `json:"url,omitempty"`
	Metadata    json.RawMessage  `json:"metadata,omitempty"`
	Status      DatasourceStatus `json:"status,omitempty"`
	VectorDbID  string           `json:"vectorDbId,omitempty"`
	APIUserID   string           `json:"apiUserId,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// ── Vector DB ────────────────────────────────────────────────

type VectorDbProvider string

const (
	VectorDbPinecone VectorDbProvider = "PINECONE"
	VectorDbQdrant   VectorDbProvider = "QDRANT"
	VectorDbWeaviate VectorDbProvider = "WEAVIATE"
	VectorDbAstra    VectorDbProvider = "ASTRA_DB"
	VectorDbPgvector VectorDbProvider = "SUPABASE"
)

type VectorDb struct {
	ID        string           `json:"id"`
	Provider  VectorDbProvider `json:"provider"`
	Options   json.RawMessage  `json:"options,omitempty"`
	APIUserID string           `json:"apiUserId,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

// ── Workflow ─────────────────────────────────────────────────

type Workflow struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Steps           []WorkflowStep   `json:"steps,omitempty"`
	WorkflowConfigs []WorkflowConfig `json:"workflowConfigs,omitempty"`
	APIUserID       string           `json:"apiUserId,omitempty"`
	CreatedAt       *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time       `json:"updatedAt,omitempty"`
}

type WorkflowStep struct {
	ID         string     `json:"id"`
	Order      int        `json:"order"`
	WorkflowID string     `json:"workflowId"`
	AgentID    string     `json:"agentId"`
	Input      string     `json:"input,omitempty"`
	Output     string     `json:"output,omitempty"`
	Agent      *Agent     `json:"agent,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// WorkflowConfig is a stored YAML-derived configuration of a workflow.
// The remote API returns Config as a JSON-encoded string.
type WorkflowConfig struct {
	ID         string     `json:"id"`
	Config     string     `json:"config"`
	WorkflowID string     `json:"workflowId"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// ── API keys & users ─────────────────────────────────────────

type APIKey struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayAPIKey string `json:"displayApiKey,omitempty"`
	// APIKey is only populated in the response to a create call.
	APIKey    string     `json:"apiKey,omitempty"`
	APIUserID string     `json:"apiUserId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type APIUser struct {
	ID        string     `json:"id"`
	Token     string     `json:"token,omitempty"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UserTraits is the payload of the identify call made after sign-in.
type UserTraits struct {
	Email     string `json:"email,omitempty"`
	UserID    string `json:"userId,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Company   string `json:"company,omitempty"`
}

// ── Runs ─────────────────────────────────────────────────────

// Run is one recorded agent or workflow invocation.
type Run struct {
	ID           string          `json:"id"`
	AgentID      string          `json:"agent_id,omitempty"`
	WorkflowID   string          `json:"workflow_id,omitempty"`
	SessionID    string          `json:"session_id,omitempty"`
	Status       string          `json:"status,omitempty"`
	Input        json.RawMessage `json:"input,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
	PromptTokens int64           `json:"prompt_tokens,omitempty"`
	OutputTokens int64           `json:"completion_tokens,omitempty"`
	Cost         float64         `json:"cost,omitempty"`
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
}

// ── Profile ──────────────────────────────────────────────────

// Profile is the console's per-user row, keyed by the auth provider's user id.
// APIKey is the bearer token used for every Superagent API call made on the
// user's behalf.
type Profile struct {
	UserID      string    `json:"user_id"`
	APIKey      string    `json:"api_key,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Company     string    `json:"company,omitempty"`
	IsOnboarded bool      `json:"is_onboarded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasAPIKey reports whether the profile carries a usable bearer token.
func (p *Profile) HasAPIKey() bool {
	return p != nil && p.APIKey != ""
}
