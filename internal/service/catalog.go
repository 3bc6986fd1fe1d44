// Package service implements business logic on top of ports.
package service

import (
	"context"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/catalog"
	"github.com/buildcost/buildcost/internal/port/database"
)

// CatalogService handles role category and task category business logic.
type CatalogService struct {
	store    database.Store
	resolver *ConfigService
}

// NewCatalogService creates a new CatalogService. The resolver is used to
// drop cached resolutions when a task category changes; it may be nil.
func NewCatalogService(store database.Store, resolver *ConfigService) *CatalogService {
	return &CatalogService{store: store, resolver: resolver}
}

// --- Role categories ---

// ListRoleCategories returns a page of role categories with user counts.
func (s *CatalogService) ListRoleCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[catalog.RoleCategory], error) {
	return s.store.ListRoleCategories(ctx, page)
}

// RoleCategoryOptions returns all active role categories for select lists.
func (s *CatalogService) RoleCategoryOptions(ctx context.Context) ([]catalog.RoleCategory, error) {
	return s.store.ListRoleCategoryOptions(ctx)
}

// GetRoleCategory returns a role category by ID.
func (s *CatalogService) GetRoleCategory(ctx context.Context, id string) (*catalog.RoleCategory, error) {
	return s.store.GetRoleCategory(ctx, id)
}

// CreateRoleCategory creates a role category after validating the request.
func (s *CatalogService) CreateRoleCategory(ctx context.Context, req *catalog.CreateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateRoleCategory(ctx, *req)
}

// UpdateRoleCategory applies partial updates to a role category.
func (s *CatalogService) UpdateRoleCategory(ctx context.Context, id string, req catalog.UpdateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateRoleCategory(ctx, id, req)
}

// DeleteRoleCategory removes a role category. Categories still referenced by
// users or step templates are refused.
func (s *CatalogService) DeleteRoleCategory(ctx context.Context, id string) error {
	return s.store.DeleteRoleCategory(ctx, id)
}

// --- Task categories ---

// ListTaskCategories returns a page of task categories with task counts.
func (s *CatalogService) ListTaskCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[catalog.TaskCategory], error) {
	return s.store.ListTaskCategories(ctx, page)
}

// TaskCategoryOptions returns active task categories for select lists,
// carrying the bound review configuration when present.
func (s *CatalogService) TaskCategoryOptions(ctx context.Context) ([]catalog.TaskCategoryOption, error) {
	return s.store.ListTaskCategoryOptions(ctx)
}

// GetTaskCategory returns a task category by ID.
func (s *CatalogService) GetTaskCategory(ctx context.Context, id string) (*catalog.TaskCategory, error) {
	return s.store.GetTaskCategory(ctx, id)
}

// CreateTaskCategory creates a task category after validating the request.
func (s *CatalogService) CreateTaskCategory(ctx context.Context, req *catalog.CreateTaskCategoryRequest) (*catalog.TaskCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateTaskCategory(ctx, *req)
}

// UpdateTaskCategory applies partial updates to a task category.
func (s *CatalogService) UpdateTaskCategory(ctx context.Context, id string, req catalog.UpdateTaskCategoryRequest) (*catalog.TaskCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tc, err := s.store.UpdateTaskCategory(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return tc, nil
}

// DeleteTaskCategory removes a task category. Categories with tasks are
// refused by the store.
func (s *CatalogService) DeleteTaskCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteTaskCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, taskCategoryID string) {
	if s.resolver != nil {
		s.resolver.InvalidateResolution(ctx, taskCategoryID)
	}
}
