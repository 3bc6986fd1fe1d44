package service

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/port/database"
)

// TemplateService handles review step template business logic.
type TemplateService struct {
	store database.Store
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(store database.Store) *TemplateService {
	return &TemplateService{store: store}
}

// List returns a page of step templates, optionally narrowed by step type
// and active flag.
func (s *TemplateService) List(ctx context.Context, page domain.PageRequest, filter database.TemplateFilter) (*domain.Page[review.StepTemplate], error) {
	if filter.StepType != "" && !review.ValidStepTypes[filter.StepType] {
		return nil, fmt.Errorf("unknown step type %q: %w", filter.StepType, domain.ErrValidation)
	}
	return s.store.ListStepTemplates(ctx, page, filter)
}

// ListByType returns the active templates of one step type.
func (s *TemplateService) ListByType(ctx context.Context, stepType review.StepType) ([]review.StepTemplate, error) {
	if !review.ValidStepTypes[stepType] {
		return nil, fmt.Errorf("unknown step type %q: %w", stepType, domain.ErrValidation)
	}
	return s.store.ListStepTemplatesByType(ctx, stepType)
}

// Get returns a step template with its role bindings.
func (s *TemplateService) Get(ctx context.Context, id string) (*review.StepTemplate, error) {
	return s.store.GetStepTemplate(ctx, id)
}

// Create creates a step template, optionally with initial role bindings.
func (s *TemplateService) Create(ctx context.Context, req *review.CreateTemplateRequest) (*review.StepTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateStepTemplate(ctx, *req)
}

// Update applies partial updates to a step template. A present role list
// fully replaces the existing bindings.
func (s *TemplateService) Update(ctx context.Context, id string, req review.UpdateTemplateRequest) (*review.StepTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateStepTemplate(ctx, id, req)
}

// Delete removes a step template. Templates referenced by configuration
// steps are refused.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteStepTemplate(ctx, id)
}

// AssignRole binds one role category to a template. Duplicate bindings
// conflict.
func (s *TemplateService) AssignRole(ctx context.Context, templateID string, req *review.AssignRoleRequest) (*review.RoleBinding, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.AssignTemplateRole(ctx, templateID, req.RoleCategoryID)
}

// BatchAssignRoles binds several role categories at once, skipping those
// already bound.
func (s *TemplateService) BatchAssignRoles(ctx context.Context, templateID string, req *review.BatchAssignRolesRequest) (*review.BatchAssignResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.BatchAssignTemplateRoles(ctx, templateID, req.RoleCategoryIDs)
}

// RemoveRole unbinds one role category from a template.
func (s *TemplateService) RemoveRole(ctx context.Context, templateID, roleCategoryID string) error {
	if roleCategoryID == "" {
		return fmt.Errorf("roleCategoryId is required: %w", domain.ErrValidation)
	}
	return s.store.RemoveTemplateRole(ctx, templateID, roleCategoryID)
}
