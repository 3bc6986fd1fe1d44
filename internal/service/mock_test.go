package service

import (
	"context"
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/catalog"
	"github.com/buildcost/buildcost/internal/domain/project"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/domain/task"
	"github.com/buildcost/buildcost/internal/domain/user"
	"github.com/buildcost/buildcost/internal/port/database"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for
// testing services without a database.
type mockStore struct {
	roleCats  []catalog.RoleCategory
	taskCats  []catalog.TaskCategory
	templates []review.StepTemplate
	configs   []review.Configuration
	tasks     []task.Task
	projects  []project.Project
	users     []user.User

	// configsByCategory backs GetConfigByTaskCategory.
	configsByCategory map[string]*review.Configuration
	// reviewersByRole backs FindReviewersByRoleCategory.
	reviewersByRole map[string][]review.Reviewer

	// Captured writes.
	savedReview *review.TaskReview
	savedStage  *review.Stage
	setStepsIn  []review.StepInput

	// Error hooks — set these to inject failures.
	getTaskErr       error
	createTaskErr    error
	saveProgressErr  error
	configByCatErr   error
	findReviewersErr error
}

func pageOf[T any](items []T, page domain.PageRequest) *domain.Page[T] {
	page.Normalize()
	return domain.NewPage(items, int64(len(items)), page)
}

// --- Role categories ---

func (m *mockStore) ListRoleCategories(_ context.Context, page domain.PageRequest) (*domain.Page[catalog.RoleCategory], error) {
	return pageOf(m.roleCats, page), nil
}

func (m *mockStore) ListRoleCategoryOptions(_ context.Context) ([]catalog.RoleCategory, error) {
	return m.roleCats, nil
}

func (m *mockStore) GetRoleCategory(_ context.Context, id string) (*catalog.RoleCategory, error) {
	for i := range m.roleCats {
		if m.roleCats[i].ID == id {
			return &m.roleCats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateRoleCategory(_ context.Context, req catalog.CreateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	rc := catalog.RoleCategory{
		ID:       fmt.Sprintf("rc-%d", len(m.roleCats)+1),
		Name:     req.Name,
		Code:     req.Code,
		IsActive: req.Active(),
	}
	m.roleCats = append(m.roleCats, rc)
	return &rc, nil
}

func (m *mockStore) UpdateRoleCategory(_ context.Context, id string, req catalog.UpdateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	for i := range m.roleCats {
		if m.roleCats[i].ID == id {
			if req.Name != nil {
				m.roleCats[i].Name = *req.Name
			}
			return &m.roleCats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteRoleCategory(_ context.Context, id string) error {
	for i := range m.roleCats {
		if m.roleCats[i].ID == id {
			m.roleCats = append(m.roleCats[:i], m.roleCats[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Task categories ---

func (m *mockStore) ListTaskCategories(_ context.Context, page domain.PageRequest) (*domain.Page[catalog.TaskCategory], error) {
	return pageOf(m.taskCats, page), nil
}

func (m *mockStore) ListTaskCategoryOptions(_ context.Context) ([]catalog.TaskCategoryOption, error) {
	opts := make([]catalog.TaskCategoryOption, 0, len(m.taskCats))
	for _, tc := range m.taskCats {
		opts = append(opts, catalog.TaskCategoryOption{ID: tc.ID, Name: tc.Name, Code: tc.Code, ReviewConfigID: tc.ReviewConfigID})
	}
	return opts, nil
}

func (m *mockStore) GetTaskCategory(_ context.Context, id string) (*catalog.TaskCategory, error) {
	for i := range m.taskCats {
		if m.taskCats[i].ID == id {
			return &m.taskCats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTaskCategory(_ context.Context, req catalog.CreateTaskCategoryRequest) (*catalog.TaskCategory, error) {
	tc := catalog.TaskCategory{
		ID:       fmt.Sprintf("tc-%d", len(m.taskCats)+1),
		Name:     req.Name,
		Code:     req.Code,
		IsActive: req.Active(),
	}
	m.taskCats = append(m.taskCats, tc)
	return &tc, nil
}

func (m *mockStore) UpdateTaskCategory(_ context.Context, id string, req catalog.UpdateTaskCategoryRequest) (*catalog.TaskCategory, error) {
	for i := range m.taskCats {
		if m.taskCats[i].ID == id {
			if req.Name != nil {
				m.taskCats[i].Name = *req.Name
			}
			return &m.taskCats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteTaskCategory(_ context.Context, id string) error {
	for i := range m.taskCats {
		if m.taskCats[i].ID == id {
			m.taskCats = append(m.taskCats[:i], m.taskCats[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Review step templates ---

func (m *mockStore) ListStepTemplates(_ context.Context, page domain.PageRequest, filter database.TemplateFilter) (*domain.Page[review.StepTemplate], error) {
	var filtered []review.StepTemplate
	for _, t := range m.templates {
		if filter.StepType != "" && t.StepType != filter.StepType {
			continue
		}
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		filtered = append(filtered, t)
	}
	return pageOf(filtered, page), nil
}

func (m *mockStore) ListStepTemplatesByType(_ context.Context, stepType review.StepType) ([]review.StepTemplate, error) {
	var filtered []review.StepTemplate
	for _, t := range m.templates {
		if t.StepType == stepType {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (m *mockStore) GetStepTemplate(_ context.Context, id string) (*review.StepTemplate, error) {
	for i := range m.templates {
		if m.templates[i].ID == id {
			return &m.templates[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateStepTemplate(_ context.Context, req review.CreateTemplateRequest) (*review.StepTemplate, error) {
	t := review.StepTemplate{
		ID:       fmt.Sprintf("tpl-%d", len(m.templates)+1),
		Name:     req.Name,
		Code:     req.Code,
		StepType: req.StepType,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	for _, roleID := range req.RoleCategoryIDs {
		t.Roles = append(t.Roles, review.RoleBinding{RoleCategoryID: roleID})
	}
	m.templates = append(m.templates, t)
	return &t, nil
}

func (m *mockStore) UpdateStepTemplate(_ context.Context, id string, req review.UpdateTemplateRequest) (*review.StepTemplate, error) {
	for i := range m.templates {
		if m.templates[i].ID == id {
			if req.Name != nil {
				m.templates[i].Name = *req.Name
			}
			return &m.templates[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteStepTemplate(_ context.Context, id string) error {
	for i := range m.templates {
		if m.templates[i].ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) AssignTemplateRole(_ context.Context, templateID, roleCategoryID string) (*review.RoleBinding, error) {
	for i := range m.templates {
		if m.templates[i].ID == templateID {
			rb := review.RoleBinding{ID: "rb-1", RoleCategoryID: roleCategoryID}
			m.templates[i].Roles = append(m.templates[i].Roles, rb)
			return &rb, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) BatchAssignTemplateRoles(_ context.Context, templateID string, roleCategoryIDs []string) (*review.BatchAssignResult, error) {
	for i := range m.templates {
		if m.templates[i].ID != templateID {
			continue
		}
		res := &review.BatchAssignResult{}
		for _, roleID := range roleCategoryIDs {
			dup := false
			for _, rb := range m.templates[i].Roles {
				if rb.RoleCategoryID == roleID {
					dup = true
					break
				}
			}
			if dup {
				res.Skipped++
				continue
			}
			m.templates[i].Roles = append(m.templates[i].Roles, review.RoleBinding{RoleCategoryID: roleID})
			res.Created++
		}
		return res, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) RemoveTemplateRole(_ context.Context, templateID, roleCategoryID string) error {
	for i := range m.templates {
		if m.templates[i].ID != templateID {
			continue
		}
		for j, rb := range m.templates[i].Roles {
			if rb.RoleCategoryID == roleCategoryID {
				m.templates[i].Roles = append(m.templates[i].Roles[:j], m.templates[i].Roles[j+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// --- Review configurations ---

func (m *mockStore) ListConfigs(_ context.Context, page domain.PageRequest) (*domain.Page[review.Configuration], error) {
	return pageOf(m.configs, page), nil
}

func (m *mockStore) GetConfig(_ context.Context, id string) (*review.Configuration, error) {
	for i := range m.configs {
		if m.configs[i].ID == id {
			return &m.configs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateConfig(_ context.Context, req review.CreateConfigRequest) (*review.Configuration, error) {
	cfg := review.Configuration{
		ID:       fmt.Sprintf("cfg-%d", len(m.configs)+1),
		Name:     req.Name,
		Code:     req.Code,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	for _, in := range req.Steps {
		cfg.Steps = append(cfg.Steps, review.Step{TemplateID: in.TemplateID, StepOrder: in.StepOrder, IsRequired: in.Required()})
	}
	for _, catID := range req.TaskCategoryIDs {
		cfg.Categories = append(cfg.Categories, review.CategorySummary{ID: catID})
	}
	m.configs = append(m.configs, cfg)
	return &cfg, nil
}

func (m *mockStore) UpdateConfig(_ context.Context, id string, req review.UpdateConfigRequest) (*review.Configuration, error) {
	for i := range m.configs {
		if m.configs[i].ID == id {
			if req.Name != nil {
				m.configs[i].Name = *req.Name
			}
			if req.TaskCategoryIDs != nil {
				m.configs[i].Categories = nil
				for _, catID := range *req.TaskCategoryIDs {
					m.configs[i].Categories = append(m.configs[i].Categories, review.CategorySummary{ID: catID})
				}
			}
			return &m.configs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteConfig(_ context.Context, id string) error {
	for i := range m.configs {
		if m.configs[i].ID == id {
			if len(m.configs[i].Categories) > 0 {
				return domain.ErrConflict
			}
			m.configs = append(m.configs[:i], m.configs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SetConfigSteps(_ context.Context, configID string, steps []review.StepInput) (*review.Configuration, error) {
	m.setStepsIn = steps
	for i := range m.configs {
		if m.configs[i].ID == configID {
			m.configs[i].Steps = nil
			for _, in := range steps {
				m.configs[i].Steps = append(m.configs[i].Steps, review.Step{TemplateID: in.TemplateID, StepOrder: in.StepOrder, IsRequired: in.Required()})
			}
			return &m.configs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetConfigByTaskCategory(_ context.Context, taskCategoryID string) (*review.Configuration, error) {
	if m.configByCatErr != nil {
		return nil, m.configByCatErr
	}
	if cfg, ok := m.configsByCategory[taskCategoryID]; ok {
		return cfg, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindReviewersByRoleCategory(_ context.Context, roleCategoryID string) ([]review.Reviewer, error) {
	if m.findReviewersErr != nil {
		return nil, m.findReviewersErr
	}
	return m.reviewersByRole[roleCategoryID], nil
}

// --- Tasks ---

func (m *mockStore) ListTasks(_ context.Context, page domain.PageRequest, filter database.TaskFilter) (*domain.Page[task.Task], error) {
	wantDeleted := filter.Deleted != nil && *filter.Deleted
	var filtered []task.Task
	for _, t := range m.tasks {
		if t.IsDeleted == wantDeleted {
			filtered = append(filtered, t)
		}
	}
	return pageOf(filtered, page), nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	if m.getTaskErr != nil {
		return nil, m.getTaskErr
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTask(_ context.Context, req task.CreateRequest) (*task.Task, error) {
	if m.createTaskErr != nil {
		return nil, m.createTaskErr
	}
	t := task.Task{
		ID:               fmt.Sprintf("task-%d", len(m.tasks)+1),
		TaskName:         req.TaskName,
		ProjectID:        req.ProjectID,
		TaskCategoryID:   req.TaskCategoryID,
		TaskLeaderID:     req.TaskLeaderID,
		IsReviewRequired: req.ReviewRequired(),
	}
	if req.ReviewRequired() {
		tr := &review.TaskReview{
			ID:               t.ID + "-review",
			TaskID:           t.ID,
			ConfigID:         req.ReviewConfigID,
			Status:           review.WorkflowPending,
			CurrentStepOrder: 1,
		}
		for i, a := range req.Stages {
			tr.Stages = append(tr.Stages, review.Stage{
				ID:             fmt.Sprintf("%s-stage-%d", t.ID, i+1),
				TaskReviewID:   tr.ID,
				StepTemplateID: a.StepTemplateID,
				StepOrder:      i + 1,
				StepName:       a.StepName,
				ReviewerID:     a.ReviewerID,
				Status:         review.StagePending,
			})
		}
		t.Review = tr
	}
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *mockStore) UpdateTask(_ context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id && !m.tasks[i].IsDeleted {
			if req.TaskName != nil {
				m.tasks[i].TaskName = *req.TaskName
			}
			return &m.tasks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) SoftDeleteTask(_ context.Context, id, deletedBy string) error {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			if m.tasks[i].IsDeleted {
				return domain.ErrConflict
			}
			now := time.Now()
			m.tasks[i].IsDeleted = true
			m.tasks[i].DeletedAt = &now
			m.tasks[i].DeletedBy = deletedBy
			if m.tasks[i].Review != nil {
				m.tasks[i].Review.IsDeleted = true
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) RestoreTask(_ context.Context, id string) error {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			if !m.tasks[i].IsDeleted {
				return domain.ErrConflict
			}
			m.tasks[i].IsDeleted = false
			m.tasks[i].DeletedAt = nil
			m.tasks[i].DeletedBy = ""
			if m.tasks[i].Review != nil {
				m.tasks[i].Review.IsDeleted = false
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) PermanentDeleteTask(_ context.Context, id string) error {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			if !m.tasks[i].IsDeleted {
				return domain.ErrConflict
			}
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SaveReviewProgress(_ context.Context, tr *review.TaskReview, stage *review.Stage) error {
	if m.saveProgressErr != nil {
		return m.saveProgressErr
	}
	m.savedReview = tr
	m.savedStage = stage
	return nil
}

// --- Projects ---

func (m *mockStore) ListProjects(_ context.Context, page domain.PageRequest) (*domain.Page[project.Project], error) {
	return pageOf(m.projects, page), nil
}

func (m *mockStore) GetProject(_ context.Context, id string) (*project.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateProject(_ context.Context, req project.CreateRequest) (*project.Project, error) {
	p := project.Project{
		ID:          fmt.Sprintf("proj-%d", len(m.projects)+1),
		ProjectName: req.ProjectName,
		ProjectType: req.ProjectType,
	}
	m.projects = append(m.projects, p)
	return &p, nil
}

func (m *mockStore) UpdateProject(_ context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			if req.ProjectName != nil {
				m.projects[i].ProjectName = *req.ProjectName
			}
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteProject(_ context.Context, id string) error {
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Users ---

func (m *mockStore) ListUsers(_ context.Context, page domain.PageRequest, _ database.UserFilter) (*domain.Page[user.User], error) {
	return pageOf(m.users, page), nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Username == username {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindUserByRole(_ context.Context, role user.Role) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Role == role {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateUser(_ context.Context, req user.CreateRequest, passwordHash string) (*user.User, error) {
	role := req.Role
	if role == "" {
		role = user.RoleMember
	}
	u := user.User{
		ID:             fmt.Sprintf("user-%d", len(m.users)+1),
		Username:       req.Username,
		Name:           req.Name,
		PasswordHash:   passwordHash,
		Role:           role,
		RoleCategoryID: req.RoleCategoryID,
		IsActive:       true,
	}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *mockStore) UpdateUser(_ context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			if req.Name != nil {
				m.users[i].Name = *req.Name
			}
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteUser(_ context.Context, id string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeCache is an in-memory cache.Cache recording deletes.
type fakeCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}
