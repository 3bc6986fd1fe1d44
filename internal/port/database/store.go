// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/catalog"
	"github.com/buildcost/buildcost/internal/domain/project"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/domain/task"
	"github.com/buildcost/buildcost/internal/domain/user"
)

// TaskFilter narrows task listings. A nil Deleted returns live tasks only.
type TaskFilter struct {
	ProjectID      string
	TaskCategoryID string
	Deleted        *bool
}

// TemplateFilter narrows step template listings.
type TemplateFilter struct {
	StepType   review.StepType
	ActiveOnly bool
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role           user.Role
	RoleCategoryID string
	ActiveOnly     bool
}

// Store is the port interface for database operations.
type Store interface {
	// Role categories
	ListRoleCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[catalog.RoleCategory], error)
	ListRoleCategoryOptions(ctx context.Context) ([]catalog.RoleCategory, error)
	GetRoleCategory(ctx context.Context, id string) (*catalog.RoleCategory, error)
	CreateRoleCategory(ctx context.Context, req catalog.CreateRoleCategoryRequest) (*catalog.RoleCategory, error)
	UpdateRoleCategory(ctx context.Context, id string, req catalog.UpdateRoleCategoryRequest) (*catalog.RoleCategory, error)
	DeleteRoleCategory(ctx context.Context, id string) error

	// Task categories
	ListTaskCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[catalog.TaskCategory], error)
	ListTaskCategoryOptions(ctx context.Context) ([]catalog.TaskCategoryOption, error)
	GetTaskCategory(ctx context.Context, id string) (*catalog.TaskCategory, error)
	CreateTaskCategory(ctx context.Context, req catalog.CreateTaskCategoryRequest) (*catalog.TaskCategory, error)
	UpdateTaskCategory(ctx context.Context, id string, req catalog.UpdateTaskCategoryRequest) (*catalog.TaskCategory, error)
	DeleteTaskCategory(ctx context.Context, id string) error

	// Review step templates
	ListStepTemplates(ctx context.Context, page domain.PageRequest, filter TemplateFilter) (*domain.Page[review.StepTemplate], error)
	ListStepTemplatesByType(ctx context.Context, stepType review.StepType) ([]review.StepTemplate, error)
	GetStepTemplate(ctx context.Context, id string) (*review.StepTemplate, error)
	CreateStepTemplate(ctx context.Context, req review.CreateTemplateRequest) (*review.StepTemplate, error)
	UpdateStepTemplate(ctx context.Context, id string, req review.UpdateTemplateRequest) (*review.StepTemplate, error)
	DeleteStepTemplate(ctx context.Context, id string) error
	AssignTemplateRole(ctx context.Context, templateID, roleCategoryID string) (*review.RoleBinding, error)
	BatchAssignTemplateRoles(ctx context.Context, templateID string, roleCategoryIDs []string) (*review.BatchAssignResult, error)
	RemoveTemplateRole(ctx context.Context, templateID, roleCategoryID string) error

	// Review configurations
	ListConfigs(ctx context.Context, page domain.PageRequest) (*domain.Page[review.Configuration], error)
	GetConfig(ctx context.Context, id string) (*review.Configuration, error)
	CreateConfig(ctx context.Context, req review.CreateConfigRequest) (*review.Configuration, error)
	UpdateConfig(ctx context.Context, id string, req review.UpdateConfigRequest) (*review.Configuration, error)
	DeleteConfig(ctx context.Context, id string) error
	SetConfigSteps(ctx context.Context, configID string, steps []review.StepInput) (*review.Configuration, error)
	GetConfigByTaskCategory(ctx context.Context, taskCategoryID string) (*review.Configuration, error)
	FindReviewersByRoleCategory(ctx context.Context, roleCategoryID string) ([]review.Reviewer, error)

	// Tasks and materialized reviews
	ListTasks(ctx context.Context, page domain.PageRequest, filter TaskFilter) (*domain.Page[task.Task], error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error)
	SoftDeleteTask(ctx context.Context, id, deletedBy string) error
	RestoreTask(ctx context.Context, id string) error
	PermanentDeleteTask(ctx context.Context, id string) error
	SaveReviewProgress(ctx context.Context, tr *review.TaskReview, stage *review.Stage) error

	// Projects
	ListProjects(ctx context.Context, page domain.PageRequest) (*domain.Page[project.Project], error)
	GetProject(ctx context.Context, id string) (*project.Project, error)
	CreateProject(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	UpdateProject(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// Users
	ListUsers(ctx context.Context, page domain.PageRequest, filter UserFilter) (*domain.Page[user.User], error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	FindUserByRole(ctx context.Context, role user.Role) (*user.User, error)
	CreateUser(ctx context.Context, req user.CreateRequest, passwordHash string) (*user.User, error)
	UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}
