package http

import (
	"net/http"

	"github.com/buildcost/buildcost/internal/service"
)

// Handlers bundles the service dependencies of all HTTP handlers.
type Handlers struct {
	Catalog   *service.CatalogService
	Templates *service.TemplateService
	Configs   *service.ConfigService
	Tasks     *service.TaskService
	Projects  *service.ProjectService
	Users     *service.UserService
}

// NewHandlers creates the handler set.
func NewHandlers(
	catalog *service.CatalogService,
	templates *service.TemplateService,
	configs *service.ConfigService,
	tasks *service.TaskService,
	projects *service.ProjectService,
	users *service.UserService,
) *Handlers {
	return &Handlers{
		Catalog:   catalog,
		Templates: templates,
		Configs:   configs,
		Tasks:     tasks,
		Projects:  projects,
		Users:     users,
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
