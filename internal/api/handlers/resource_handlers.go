package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ── LLMs ─────────────────────────────────────────────────────

func (h *Handlers) ListLLMs(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetLLMs(r.Context())
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateLLM(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateLLM(r.Context(), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) PatchLLM(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchLLM(r.Context(), chi.URLParam(r, "llmID"), payload)
	respondRemote(w, resp, err)
}

// ── Tools ────────────────────────────────────────────────────

func (h *Handlers) ListTools(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.client(r).GetTools(r.Context(), page)
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateTool(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateTool(r.Context(), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) PatchTool(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchTool(r.Context(), chi.URLParam(r, "toolID"), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) DeleteTool(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).DeleteTool(r.Context(), chi.URLParam(r, "toolID"))
	respondRemote(w, resp, err)
}

// ── Datasources ──────────────────────────────────────────────

func (h *Handlers) ListDatasources(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.client(r).GetDatasources(r.Context(), page)
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateDatasource(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateDatasource(r.Context(), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) PatchDatasource(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchDatasource(r.Context(), chi.URLParam(r, "datasourceID"), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) DeleteDatasource(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).DeleteDatasource(r.Context(), chi.URLParam(r, "datasourceID"))
	respondRemote(w, resp, err)
}

// ── Vector databases ─────────────────────────────────────────

func (h *Handlers) ListVectorDbs(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetVectorDbs(r.Context())
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateVectorDb(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateVectorDb(r.Context(), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) PatchVectorDb(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).PatchVectorDb(r.Context(), chi.URLParam(r, "vectorDbID"), payload)
	respondRemote(w, resp, err)
}

// ── API keys ─────────────────────────────────────────────────

func (h *Handlers) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetAPIKeys(r.Context())
	respondRemote(w, resp, err)
}

func (h *Handlers) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	resp, err := h.client(r).CreateAPIKey(r.Context(), payload)
	respondRemote(w, resp, err)
}

func (h *Handlers) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).DeleteAPIKey(r.Context(), chi.URLParam(r, "apiKeyID"))
	respondRemote(w, resp, err)
}

// ── API user & runs ──────────────────────────────────────────

func (h *Handlers) GetAPIUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetAPIUser(r.Context())
	respondRemote(w, resp, err)
}

// ListRuns forwards the dashboard's filter query (agent_id, workflow_id,
// limit, from_page, ...) unchanged.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client(r).GetRuns(r.Context(), passthroughQuery(r))
	respondRemote(w, resp, err)
}
