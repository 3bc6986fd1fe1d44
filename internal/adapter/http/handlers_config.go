package http

import (
	"net/http"

	"github.com/buildcost/buildcost/internal/domain/review"
)

func (h *Handlers) ListReviewConfigs(w http.ResponseWriter, r *http.Request) {
	handlePage(h.Configs.List)(w, r)
}

func (h *Handlers) GetReviewConfig(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Configs.Get, "review configuration not found")(w, r)
}

func (h *Handlers) CreateReviewConfig(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Configs.Create)(w, r)
}

func (h *Handlers) UpdateReviewConfig(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Configs.Update, "review configuration not found")(w, r)
}

func (h *Handlers) DeleteReviewConfig(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Configs.Delete, "review configuration not found")(w, r)
}

// SetReviewConfigSteps replaces the configuration's whole step list.
func (h *Handlers) SetReviewConfigSteps(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[review.SetStepsRequest](w, r)
	if !ok {
		return
	}
	cfg, err := h.Configs.SetSteps(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, r, err, "review configuration not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, cfg)
}

// GetReviewConfigSteps returns the configuration's current step list,
// ordered by step order with templates and role bindings expanded.
func (h *Handlers) GetReviewConfigSteps(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Configs.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, "review configuration not found")
		return
	}
	steps := cfg.Steps
	if steps == nil {
		steps = []review.Step{}
	}
	writeEnvelope(w, r, http.StatusOK, steps)
}

// GetReviewConfigByTaskCategory resolves the configuration bound to a task
// category together with the eligible reviewers per step.
func (h *Handlers) GetReviewConfigByTaskCategory(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.Configs.ResolveByTaskCategory(r.Context(), urlParam(r, "taskCategoryId"))
	if err != nil {
		writeDomainError(w, r, err, "no review configuration bound to task category")
		return
	}
	writeEnvelope(w, r, http.StatusOK, resolved)
}
