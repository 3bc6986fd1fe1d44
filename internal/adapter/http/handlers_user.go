package http

import (
	"net/http"

	"github.com/buildcost/buildcost/internal/domain/user"
	"github.com/buildcost/buildcost/internal/port/database"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.UserFilter{
		Role:           user.Role(q.Get("role")),
		RoleCategoryID: q.Get("roleCategoryId"),
		ActiveOnly:     q.Get("activeOnly") == "true",
	}
	page, err := h.Users.List(r.Context(), parsePage(r), filter)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, r, http.StatusOK, page)
}

// ListUsersByRoleCategory returns the active members of a role category in
// the reviewer-picker shape.
func (h *Handlers) ListUsersByRoleCategory(w http.ResponseWriter, r *http.Request) {
	reviewers, err := h.Users.ListByRoleCategory(r.Context(), urlParam(r, "roleCategoryId"))
	if err != nil {
		writeDomainError(w, r, err, "role category not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, reviewers)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Users.Get, "user not found")(w, r)
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Users.Create)(w, r)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Users.Update, "user not found")(w, r)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Users.Delete, "user not found")(w, r)
}
