package forms

import (
	"strings"

	"github.com/superagent-ai/superagent/console/pkg/models"
)

// AgentForm is the "new agent" form.
type AgentForm struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Prompt         string             `json:"prompt"`
	InitialMessage string             `json:"initialMessage,omitempty"`
	Avatar         string             `json:"avatar,omitempty"`
	IsActive       bool               `json:"isActive"`
	LLMProvider    models.LLMProvider `json:"llmProvider"`
	LLMModel       string             `json:"llmModel"`
}

// Validate checks required fields.
func (f *AgentForm) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(f.Name) == "" {
		errs.add("name", "Name is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		errs.add("description", "Description is required")
	}
	if f.LLMProvider == "" {
		errs.add("llmProvider", "Select an LLM provider")
	}
	if strings.TrimSpace(f.LLMModel) == "" {
		errs.add("llmModel", "Select a model")
	}
	return errs.err()
}

// Payload is the body sent to CreateAgent. The LLM binding is created
// separately, once the agent id is known.
func (f *AgentForm) Payload() map[string]any {
	return map[string]any{
		"name":           f.Name,
		"description":    f.Description,
		"prompt":         f.Prompt,
		"initialMessage": f.InitialMessage,
		"avatar":         f.Avatar,
		"isActive":       f.IsActive,
		"llmModel":       f.LLMModel,
	}
}

// SettingsForm is the agent settings form. ToolIDs and DatasourceIDs are the
// full selected sets; they are reconciled against the agent's current
// bindings.
type SettingsForm struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Prompt         string             `json:"prompt"`
	InitialMessage string             `json:"initialMessage,omitempty"`
	Avatar         string             `json:"avatar,omitempty"`
	IsActive       bool               `json:"isActive"`
	LLMProvider    models.LLMProvider `json:"llmProvider"`
	LLMModel       string             `json:"llmModel"`
	ToolIDs        []string           `json:"tools"`
	DatasourceIDs  []string           `json:"datasources"`
}

// Validate checks required fields.
func (f *SettingsForm) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(f.Name) == "" {
		errs.add("name", "Name is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		errs.add("description", "Description is required")
	}
	if f.LLMProvider != "" && strings.TrimSpace(f.LLMModel) == "" {
		errs.add("llmModel", "Select a model")
	}
	for i, id := range f.ToolIDs {
		if strings.TrimSpace(id) == "" {
			errs.add("tools", "entry %d is empty", i)
		}
	}
	for i, id := range f.DatasourceIDs {
		if strings.TrimSpace(id) == "" {
			errs.add("datasources", "entry %d is empty", i)
		}
	}
	return errs.err()
}

// AgentPatch is the body sent to PatchAgent.
func (f *SettingsForm) AgentPatch() map[string]any {
	p := map[string]any{
		"name":           f.Name,
		"description":    f.Description,
		"prompt":         f.Prompt,
		"initialMessage": f.InitialMessage,
		"isActive":       f.IsActive,
	}
	if f.Avatar != "" {
		p["avatar"] = f.Avatar
	}
	if f.LLMModel != "" {
		p["llmModel"] = f.LLMModel
	}
	return p
}
