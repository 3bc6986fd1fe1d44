package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. Health is
// exposed both at the root for probes and under the API prefix.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Role categories
		r.Route("/role-category", func(r chi.Router) {
			r.Get("/", h.RoleCategoryOptions)
			r.Get("/page", h.ListRoleCategories)
			r.Get("/select", h.RoleCategoryOptions)
			r.Post("/", h.CreateRoleCategory)
			r.Get("/{id}", h.GetRoleCategory)
			r.Put("/{id}", h.UpdateRoleCategory)
			r.Delete("/{id}", h.DeleteRoleCategory)
		})

		// Task categories
		r.Route("/task-category", func(r chi.Router) {
			r.Get("/", h.TaskCategoryOptions)
			r.Get("/page", h.ListTaskCategories)
			r.Get("/select", h.TaskCategoryOptions)
			r.Post("/", h.CreateTaskCategory)
			r.Get("/{id}", h.GetTaskCategory)
			r.Put("/{id}", h.UpdateTaskCategory)
			r.Delete("/{id}", h.DeleteTaskCategory)
		})

		// Review step templates
		r.Route("/review-step-template", func(r chi.Router) {
			r.Get("/page", h.ListStepTemplates)
			r.Get("/by-type/{stepType}", h.ListStepTemplatesByType)
			r.Post("/", h.CreateStepTemplate)
			r.Get("/{id}", h.GetStepTemplate)
			r.Put("/{id}", h.UpdateStepTemplate)
			r.Delete("/{id}", h.DeleteStepTemplate)
			r.Get("/{id}/roles", h.ListTemplateRoles)
			r.Post("/{id}/roles", h.AssignTemplateRole)
			r.Post("/{id}/roles/batch", h.BatchAssignTemplateRoles)
			r.Delete("/{id}/roles/{roleCategoryId}", h.RemoveTemplateRole)
		})

		// Review configurations
		r.Route("/review-config", func(r chi.Router) {
			r.Get("/page", h.ListReviewConfigs)
			r.Post("/", h.CreateReviewConfig)
			r.Get("/by-task-category/{taskCategoryId}", h.GetReviewConfigByTaskCategory)
			r.Get("/{id}", h.GetReviewConfig)
			r.Put("/{id}", h.UpdateReviewConfig)
			r.Delete("/{id}", h.DeleteReviewConfig)
			r.Get("/{id}/steps", h.GetReviewConfigSteps)
			r.Put("/{id}/steps", h.SetReviewConfigSteps)
		})

		// Tasks and the recycle bin
		r.Route("/task", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Get("/page", h.ListTasks)
			r.Get("/deleted", h.ListDeletedTasks)
			r.Post("/", h.CreateTask)
			r.Get("/{id}", h.GetTask)
			r.Put("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Post("/{id}/restore", h.RestoreTask)
			r.Delete("/{id}/permanent", h.PermanentDeleteTask)
			r.Post("/{id}/review/approve", h.ApproveTaskStage)
			r.Post("/{id}/review/reject", h.RejectTaskStage)
		})

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/page", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
		})

		// Users
		r.Route("/user", func(r chi.Router) {
			r.Get("/page", h.ListUsers)
			r.Get("/by-role/{roleCategoryId}", h.ListUsersByRoleCategory)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Get("/{id}/detail", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})
}
