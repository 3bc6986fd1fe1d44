package service

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/project"
	"github.com/buildcost/buildcost/internal/port/database"
)

// ProjectService handles project business logic.
type ProjectService struct {
	store database.Store
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store database.Store) *ProjectService {
	return &ProjectService{store: store}
}

// List returns a page of projects with task counts.
func (s *ProjectService) List(ctx context.Context, page domain.PageRequest) (*domain.Page[project.Project], error) {
	return s.store.ListProjects(ctx, page)
}

// Get returns a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.store.GetProject(ctx, id)
}

// Create creates a project after validating the request. A supplied creator
// must be an existing user.
func (s *ProjectService) Create(ctx context.Context, req *project.CreateRequest) (*project.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.CreatorID != "" {
		if _, err := s.store.GetUser(ctx, req.CreatorID); err != nil {
			return nil, fmt.Errorf("creator %s: %w", req.CreatorID, err)
		}
	}
	return s.store.CreateProject(ctx, *req)
}

// Update applies partial updates to a project.
func (s *ProjectService) Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateProject(ctx, id, req)
}

// Delete removes a project. Projects with tasks are refused by the store.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProject(ctx, id)
}
