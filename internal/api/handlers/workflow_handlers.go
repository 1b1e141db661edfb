package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/forms"
)

// ══════════════════════════════════════════════════════════════
// ── Workflow Handlers ────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetWorkflows(r.Context(), passthroughQuery(r))
	respondRemote(w, resp, err)
}

func (h *Handlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetWorkflowByID(r.Context(), chi.URLParam(r, "workflowID"))
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateWorkflow(r.Context(), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) PatchWorkflow(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchWorkflow(r.Context(), chi.URLParam(r, "workflowID"), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).DeleteWorkflow(r.Context(), chi.URLParam(r, "workflowID"))
	respondRemote(w, resp, err)
}

func (h *Handlers) InvokeWorkflow(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).InvokeWorkflow(r.Context(), chi.URLParam(r, "workflowID"), payload)
	respondRemote(w, resp, err)
}

// ── Steps ────────────────────────────────────────────────────

func (h *Handlers) ListWorkflowSteps(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetWorkflowSteps(r.Context(), chi.URLParam(r, "workflowID"))
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateWorkflowStep(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateWorkflowStep(r.Context(), chi.URLParam(r, "workflowID"), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) PatchWorkflowStep(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchWorkflowStep(r.Context(),
		chi.URLParam(r, "workflowID"), chi.URLParam(r, "stepID"), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) DeleteWorkflowStep(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).DeleteWorkflowStep(r.Context(),
		chi.URLParam(r, "workflowID"), chi.URLParam(r, "stepID"))
	respondRemote(w, resp, err)
}

// ── YAML config ──────────────────────────────────────────────

// SaveWorkflowConfig validates a YAML workflow definition and forwards it to
// the remote API. The remote response is passed through untouched.
func (h *Handlers) SaveWorkflowConfig(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "Workflow definition is too large")
		return
	}
	if _, err := forms.ParseWorkflowConfig(doc); err != nil {
		respondValidation(w, err)
		return
	}

	resp, err := h.client(r).GenerateWorkflow(r.Context(), workflowID, string(doc))
	if err != nil {
		respondClientError(w, err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Debug().Err(err).Str("workflow_id", workflowID).Msg("Workflow config response copy failed")
	}
}
