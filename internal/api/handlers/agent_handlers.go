package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/forms"
	"github.com/superagent-ai/superagent/console/internal/reconcile"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ══════════════════════════════════════════════════════════════
// ── Agent Handlers ───────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.client(r).GetAgents(r.Context(), page)
	respondRemote(w, resp, err)
}

func (h *Handlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetAgentByID(r.Context(), chi.URLParam(r, "agentID"))
	respondRemote(w, resp, err)
}

// CreateAgent creates the agent, then binds the configured LLM for the
// selected provider. A missing LLM leaves the agent unbound and says so.
func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var form forms.AgentForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := form.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	c := h.client(r)
	llms, err := c.GetLLMs(r.Context())
	if err != nil {
		respondClientError(w, err)
		return
	}

	created, err := c.CreateAgent(r.Context(), form.Payload())
	if err != nil || !created.OK() {
		respondRemote(w, created, err)
		return
	}
	agentID := created.Data.ID

	llm := findProviderLLM(llms.Data, form.LLMProvider)
	if llm == nil {
		log.Warn().Str("agent_id", agentID).Str("provider", string(form.LLMProvider)).Msg("No LLM configured for provider")
		respondJSON(w, http.StatusCreated, map[string]any{
			"success":      true,
			"data":         created.Data,
			"notification": "Agent created, but no " + string(form.LLMProvider) + " LLM is configured",
		})
		return
	}
	if _, err := c.CreateAgentLLM(r.Context(), agentID, llm.ID); err != nil {
		respondClientError(w, err)
		return
	}

	log.Info().Str("agent_id", agentID).Str("llm_id", llm.ID).Msg("Agent created")
	respondJSON(w, http.StatusCreated, created)
}

// PatchAgent forwards a raw agent patch. Binding changes go through
// UpdateAgentSettings.
func (h *Handlers) PatchAgent(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchAgent(r.Context(), chi.URLParam(r, "agentID"), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).DeleteAgentByID(r.Context(), chi.URLParam(r, "agentID"))
	respondRemote(w, resp, err)
}

func (h *Handlers) InvokeAgent(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).InvokeAgent(r.Context(), chi.URLParam(r, "agentID"), payload)
	respondRemote(w, resp, err)
}

type settingsResponse struct {
	Applied []reconcile.Op `json:"applied"`
}

// UpdateAgentSettings saves the settings form. The agent is patched and its
// bindings are brought in line with the selection, one call at a time; the
// first failed call stops the rest.
func (h *Handlers) UpdateAgentSettings(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	var form forms.SettingsForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := form.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	c := h.client(r)
	agent, err := c.GetAgentByID(r.Context(), agentID)
	if err != nil || !agent.OK() {
		respondRemote(w, agent, err)
		return
	}
	var llms []models.LLM
	if form.LLMProvider != "" {
		resp, err := c.GetLLMs(r.Context())
		if err != nil {
			respondClientError(w, err)
			return
		}
		llms = resp.Data
	}

	ops := reconcile.Plan(&agent.Data, &form, llms)
	applied, err := reconcile.Apply(r.Context(), c, agentID, ops)
	if err != nil {
		var stepErr *reconcile.StepError
		if errors.As(err, &stepErr) {
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"error":        "reconcile_failed",
				"notification": stepErr.Err.Error(),
				"applied":      applied,
				"failed":       stepErr.Step,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, settingsResponse{Applied: applied})
}

func findProviderLLM(llms []models.LLM, provider models.LLMProvider) *models.LLM {
	for i := range llms {
		if llms[i].Provider == provider {
			return &llms[i]
		}
	}
	return nil
}
