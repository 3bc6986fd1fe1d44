package http

import (
	"net/http"

	"github.com/buildcost/buildcost/internal/port/database"
)

func taskFilter(r *http.Request) database.TaskFilter {
	q := r.URL.Query()
	return database.TaskFilter{
		ProjectID:      q.Get("projectId"),
		TaskCategoryID: q.Get("taskCategoryId"),
	}
}

func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, err := h.Tasks.List(r.Context(), parsePage(r), taskFilter(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, r, http.StatusOK, page)
}

// ListDeletedTasks is the recycle bin view.
func (h *Handlers) ListDeletedTasks(w http.ResponseWriter, r *http.Request) {
	page, err := h.Tasks.ListDeleted(r.Context(), parsePage(r), taskFilter(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, r, http.StatusOK, page)
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Tasks.Get, "task not found")(w, r)
}

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Tasks.Create)(w, r)
}

func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Tasks.Update, "task not found")(w, r)
}

// DeleteTask soft-deletes a task into the recycle bin.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	deletedBy := r.URL.Query().Get("deletedBy")
	if err := h.Tasks.SoftDelete(r.Context(), urlParam(r, "id"), deletedBy); err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, nil)
}

func (h *Handlers) RestoreTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Restore(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, nil)
}

func (h *Handlers) PermanentDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.PermanentDelete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeEnvelope(w, r, http.StatusOK, nil)
}

func (h *Handlers) ApproveTaskStage(w http.ResponseWriter, r *http.Request) {
	handleAction(h.Tasks.Approve, "task not found")(w, r)
}

func (h *Handlers) RejectTaskStage(w http.ResponseWriter, r *http.Request) {
	handleAction(h.Tasks.Reject, "task not found")(w, r)
}
