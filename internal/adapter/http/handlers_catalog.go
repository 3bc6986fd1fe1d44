package http

import (
	"net/http"
)

// --- Role categories ---

func (h *Handlers) ListRoleCategories(w http.ResponseWriter, r *http.Request) {
	handlePage(h.Catalog.ListRoleCategories)(w, r)
}

func (h *Handlers) RoleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	handleOptions(h.Catalog.RoleCategoryOptions)(w, r)
}

func (h *Handlers) GetRoleCategory(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Catalog.GetRoleCategory, "role category not found")(w, r)
}

func (h *Handlers) CreateRoleCategory(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Catalog.CreateRoleCategory)(w, r)
}

func (h *Handlers) UpdateRoleCategory(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Catalog.UpdateRoleCategory, "role category not found")(w, r)
}

func (h *Handlers) DeleteRoleCategory(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Catalog.DeleteRoleCategory, "role category not found")(w, r)
}

// --- Task categories ---

func (h *Handlers) ListTaskCategories(w http.ResponseWriter, r *http.Request) {
	handlePage(h.Catalog.ListTaskCategories)(w, r)
}

func (h *Handlers) TaskCategoryOptions(w http.ResponseWriter, r *http.Request) {
	handleOptions(h.Catalog.TaskCategoryOptions)(w, r)
}

func (h *Handlers) GetTaskCategory(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Catalog.GetTaskCategory, "task category not found")(w, r)
}

func (h *Handlers) CreateTaskCategory(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Catalog.CreateTaskCategory)(w, r)
}

func (h *Handlers) UpdateTaskCategory(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Catalog.UpdateTaskCategory, "task category not found")(w, r)
}

func (h *Handlers) DeleteTaskCategory(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Catalog.DeleteTaskCategory, "task category not found")(w, r)
}
