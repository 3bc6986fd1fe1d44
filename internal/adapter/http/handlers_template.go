package http

import (
	"net/http"

	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/port/database"
)

func (h *Handlers) ListStepTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.TemplateFilter{
		StepType:   review.StepType(q.Get("stepType")),
		ActiveOnly: q.Get("activeOnly") == "true",
	}
	page, err := h.Templates.List(r.Context(), parsePage(r), filter)
	if err != nil {
		writeDomainError(w, r, err, "step templates not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, page)
}

func (h *Handlers) ListStepTemplatesByType(w http.ResponseWriter, r *http.Request) {
	stepType := review.StepType(urlParam(r, "stepType"))
	items, err := h.Templates.ListByType(r.Context(), stepType)
	if err != nil {
		writeDomainError(w, r, err, "step templates not found")
		return
	}
	if items == nil {
		items = []review.StepTemplate{}
	}
	writeEnvelope(w, r, http.StatusOK, items)
}

func (h *Handlers) GetStepTemplate(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Templates.Get, "step template not found")(w, r)
}

func (h *Handlers) CreateStepTemplate(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Templates.Create)(w, r)
}

func (h *Handlers) UpdateStepTemplate(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Templates.Update, "step template not found")(w, r)
}

func (h *Handlers) DeleteStepTemplate(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Templates.Delete, "step template not found")(w, r)
}

func (h *Handlers) ListTemplateRoles(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Templates.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, "step template not found")
		return
	}
	roles := tpl.Roles
	if roles == nil {
		roles = []review.RoleBinding{}
	}
	writeEnvelope(w, r, http.StatusOK, roles)
}

func (h *Handlers) AssignTemplateRole(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[review.AssignRoleRequest](w, r)
	if !ok {
		return
	}
	binding, err := h.Templates.AssignRole(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, r, err, "step template not found")
		return
	}
	writeEnvelope(w, r, http.StatusCreated, binding)
}

func (h *Handlers) BatchAssignTemplateRoles(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[review.BatchAssignRolesRequest](w, r)
	if !ok {
		return
	}
	res, err := h.Templates.BatchAssignRoles(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, r, err, "step template not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, res)
}

func (h *Handlers) RemoveTemplateRole(w http.ResponseWriter, r *http.Request) {
	err := h.Templates.RemoveRole(r.Context(), urlParam(r, "id"), urlParam(r, "roleCategoryId"))
	if err != nil {
		writeDomainError(w, r, err, "role binding not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, nil)
}
