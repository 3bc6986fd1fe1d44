package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	bchttp "github.com/buildcost/buildcost/internal/adapter/http"
	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/catalog"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/domain/task"
	"github.com/buildcost/buildcost/internal/port/database"
	"github.com/buildcost/buildcost/internal/service"
)

// stubStore implements the subset of database.Store the handler tests hit.
// The embedded interface panics on anything not stubbed here.
type stubStore struct {
	database.Store

	roleCats []catalog.RoleCategory
	taskCats []catalog.TaskCategory
	tasks    []task.Task

	configByCategory map[string]*review.Configuration
	reviewersByRole  map[string][]review.Reviewer
}

func (m *stubStore) ListRoleCategories(_ context.Context, page domain.PageRequest) (*domain.Page[catalog.RoleCategory], error) {
	page.Normalize()
	return domain.NewPage(m.roleCats, int64(len(m.roleCats)), page), nil
}

func (m *stubStore) GetRoleCategory(_ context.Context, id string) (*catalog.RoleCategory, error) {
	for i := range m.roleCats {
		if m.roleCats[i].ID == id {
			return &m.roleCats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *stubStore) CreateRoleCategory(_ context.Context, req catalog.CreateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	rc := catalog.RoleCategory{ID: fmt.Sprintf("rc-%d", len(m.roleCats)+1), Name: req.Name, Code: req.Code, IsActive: req.Active()}
	m.roleCats = append(m.roleCats, rc)
	return &rc, nil
}

func (m *stubStore) GetTaskCategory(_ context.Context, id string) (*catalog.TaskCategory, error) {
	for i := range m.taskCats {
		if m.taskCats[i].ID == id {
			return &m.taskCats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *stubStore) GetConfigByTaskCategory(_ context.Context, taskCategoryID string) (*review.Configuration, error) {
	if cfg, ok := m.configByCategory[taskCategoryID]; ok {
		return cfg, nil
	}
	return nil, domain.ErrNotFound
}

func (m *stubStore) FindReviewersByRoleCategory(_ context.Context, roleCategoryID string) ([]review.Reviewer, error) {
	return m.reviewersByRole[roleCategoryID], nil
}

func (m *stubStore) CreateTask(_ context.Context, req task.CreateRequest) (*task.Task, error) {
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

func (m *stubStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *stubStore) SaveReviewProgress(_ context.Context, _ *review.TaskReview, _ *review.Stage) error {
	return nil
}

func newTestRouter(store *stubStore) chi.Router {
	configs := service.NewConfigService(store, nil, 0, nil)
	h := bchttp.NewHandlers(
		service.NewCatalogService(store, configs),
		service.NewTemplateService(store),
		configs,
		service.NewTaskService(store, nil),
		service.NewProjectService(store),
		service.NewUserService(store, 4),
	)
	r := chi.NewRouter()
	bchttp.MountRoutes(r, h)
	return r
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
	Path      string          `json:"path"`
}

func doRequest(t *testing.T, r chi.Router, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestHealthEnvelope(t *testing.T) {
	r := newTestRouter(&stubStore{})

	rec, env := doRequest(t, r, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.Code != 200 || env.Message != "success" {
		t.Errorf("envelope = %+v, want code 200 message success", env)
	}
	if env.Path != "/api/v1/health" {
		t.Errorf("path = %q, want /api/v1/health", env.Path)
	}
	if env.Timestamp == "" {
		t.Error("timestamp must be set")
	}
}

func TestCreateRoleCategoryValidation(t *testing.T) {
	r := newTestRouter(&stubStore{})

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/role-category/", map[string]string{"code": "EST"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Code != 400 || env.Message == "success" {
		t.Errorf("envelope = %+v, want a 400 error message", env)
	}
}

func TestGetRoleCategoryNotFound(t *testing.T) {
	r := newTestRouter(&stubStore{})

	rec, _ := doRequest(t, r, http.MethodGet, "/api/v1/role-category/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRoleCategoryPageEnvelope(t *testing.T) {
	store := &stubStore{roleCats: []catalog.RoleCategory{{ID: "rc-1", Name: "Estimator", Code: "EST"}}}
	r := newTestRouter(store)

	rec, env := doRequest(t, r, http.MethodGet, "/api/v1/role-category/page?pageNum=1&pageSize=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var page struct {
		List     []catalog.RoleCategory `json:"list"`
		Total    int64                  `json:"total"`
		PageNum  int                    `json:"pageNum"`
		PageSize int                    `json:"pageSize"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || len(page.List) != 1 || page.PageNum != 1 || page.PageSize != 10 {
		t.Errorf("page = %+v, want one item on page 1/10", page)
	}
}

func boundCategoryStore() *stubStore {
	cfgID := "cfg-1"
	return &stubStore{
		taskCats: []catalog.TaskCategory{{ID: "tc-1", Name: "Cost estimation", Code: "COST_EST", IsActive: true, ReviewConfigID: &cfgID}},
	}
}

func createTaskBody() map[string]any {
	return map[string]any{
		"taskName":       "Foundation cost audit",
		"projectId":      "proj-1",
		"taskCategoryId": "tc-1",
		"taskLeaderId":   "user-1",
		"reviewConfigId": "cfg-1",
		"stages": []map[string]string{
			{"stepTemplateId": "tpl-1", "stepName": "Initial review", "reviewerId": "user-2"},
		},
	}
}

func TestCreateTaskAndApprove(t *testing.T) {
	store := boundCategoryStore()
	r := newTestRouter(store)

	rec, env := doRequest(t, r, http.MethodPost, "/api/v1/task/", createTaskBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created task.Task
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if created.Review == nil || created.Review.Status != review.WorkflowPending {
		t.Fatalf("review = %+v, want PENDING", created.Review)
	}

	rec, env = doRequest(t, r, http.MethodPost, "/api/v1/task/"+created.ID+"/review/approve", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body.String())
	}
	var approved task.Task
	if err := json.Unmarshal(env.Data, &approved); err != nil {
		t.Fatalf("decode approved task: %v", err)
	}
	if approved.Review.Status != review.WorkflowApproved {
		t.Errorf("status = %s, want APPROVED after single-stage approval", approved.Review.Status)
	}

	// Terminal reviews conflict on further actions.
	rec, _ = doRequest(t, r, http.MethodPost, "/api/v1/task/"+created.ID+"/review/approve", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second approve status = %d, want 409", rec.Code)
	}
}

func TestCreateTaskUnboundConfig(t *testing.T) {
	store := boundCategoryStore()
	r := newTestRouter(store)

	body := createTaskBody()
	body["reviewConfigId"] = "cfg-other"
	rec, _ := doRequest(t, r, http.MethodPost, "/api/v1/task/", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestResolveByTaskCategoryEndpoint(t *testing.T) {
	tpl := review.StepTemplate{
		ID:       "tpl-1",
		Name:     "Initial review",
		IsActive: true,
		Roles:    []review.RoleBinding{{RoleCategoryID: "rc-1", RoleName: "Estimator"}},
	}
	cfg := &review.Configuration{
		ID:       "cfg-1",
		Name:     "Standard cost review",
		Code:     "STD",
		IsActive: true,
		Steps:    []review.Step{{TemplateID: "tpl-1", StepOrder: 1, IsRequired: true, Template: &tpl}},
	}
	store := &stubStore{
		configByCategory: map[string]*review.Configuration{"tc-1": cfg},
		reviewersByRole:  map[string][]review.Reviewer{"rc-1": {{ID: "user-1", Name: "Ana", Username: "ana"}}},
	}
	r := newTestRouter(store)

	rec, env := doRequest(t, r, http.MethodGet, "/api/v1/review-config/by-task-category/tc-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resolved review.ResolvedConfiguration
	if err := json.Unmarshal(env.Data, &resolved); err != nil {
		t.Fatalf("decode resolution: %v", err)
	}
	if len(resolved.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(resolved.Steps))
	}
	if len(resolved.Steps[0].EligibleReviewers) != 1 || resolved.Steps[0].EligibleReviewers[0].Username != "ana" {
		t.Errorf("reviewPersonnel = %+v, want [ana]", resolved.Steps[0].EligibleReviewers)
	}

	rec, _ = doRequest(t, r, http.MethodGet, "/api/v1/review-config/by-task-category/tc-unbound", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unbound status = %d, want 404", rec.Code)
	}
}

func TestListUsersByRoleCategoryEndpoint(t *testing.T) {
	store := &stubStore{
		reviewersByRole: map[string][]review.Reviewer{"rc-1": {{ID: "user-1", Name: "Ana", Username: "ana"}}},
	}
	r := newTestRouter(store)

	rec, env := doRequest(t, r, http.MethodGet, "/api/v1/user/by-role/rc-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reviewers []review.Reviewer
	if err := json.Unmarshal(env.Data, &reviewers); err != nil {
		t.Fatalf("decode reviewers: %v", err)
	}
	if len(reviewers) != 1 || reviewers[0].Username != "ana" {
		t.Errorf("reviewers = %+v, want [ana]", reviewers)
	}

	rec, env = doRequest(t, r, http.MethodGet, "/api/v1/user/by-role/rc-empty", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty status = %d", rec.Code)
	}
	if string(env.Data) != "[]" {
		t.Errorf("empty payload = %s, want []", env.Data)
	}
}
