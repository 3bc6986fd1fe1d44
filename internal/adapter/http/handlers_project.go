package http

import "net/http"

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	handlePage(h.Projects.List)(w, r)
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Projects.Get, "project not found")(w, r)
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Projects.Create)(w, r)
}

func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Projects.Update, "project not found")(w, r)
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Projects.Delete, "project not found")(w, r)
}
