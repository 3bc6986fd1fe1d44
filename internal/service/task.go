package service

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/adapter/otel"
	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/domain/task"
	"github.com/buildcost/buildcost/internal/domain/user"
	"github.com/buildcost/buildcost/internal/port/database"
)

// TaskService handles task business logic: atomic creation with the
// materialized review, the recycle bin lifecycle, and stage progression.
type TaskService struct {
	store   database.Store
	metrics *otel.Metrics
}

// NewTaskService creates a new TaskService. metrics may be nil.
func NewTaskService(store database.Store, metrics *otel.Metrics) *TaskService {
	return &TaskService{store: store, metrics: metrics}
}

// List returns a page of live tasks matching the filter.
func (s *TaskService) List(ctx context.Context, page domain.PageRequest, filter database.TaskFilter) (*domain.Page[task.Task], error) {
	return s.store.ListTasks(ctx, page, filter)
}

// ListDeleted returns the recycle bin: soft-deleted tasks only.
func (s *TaskService) ListDeleted(ctx context.Context, page domain.PageRequest, filter database.TaskFilter) (*domain.Page[task.Task], error) {
	deleted := true
	filter.Deleted = &deleted
	return s.store.ListTasks(ctx, page, filter)
}

// Get returns a task with its review and stages.
func (s *TaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// Create creates a task and, when review is required, its review record and
// stages in one transaction. The given config must be the one bound to the
// task's category.
func (s *TaskService) Create(ctx context.Context, req *task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, span := otel.StartTaskCreationSpan(ctx, req.ProjectID, req.TaskCategoryID)
	defer span.End()

	if req.ReviewRequired() {
		cat, err := s.store.GetTaskCategory(ctx, req.TaskCategoryID)
		if err != nil {
			return nil, err
		}
		switch {
		case req.ReviewConfigID == "" && cat.ReviewConfigID != nil:
			// The category's bound configuration is the default.
			req.ReviewConfigID = *cat.ReviewConfigID
		case req.ReviewConfigID != "" && (cat.ReviewConfigID == nil || *cat.ReviewConfigID != req.ReviewConfigID):
			return nil, fmt.Errorf("reviewConfigId %s is not bound to task category %s: %w",
				req.ReviewConfigID, req.TaskCategoryID, domain.ErrValidation)
		}
		// With neither a binding nor an explicit id the store creates a
		// disposable placeholder configuration for this task.
	}

	t, err := s.store.CreateTask(ctx, *req)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TasksCreated.Add(ctx, 1)
		if t.Review != nil {
			s.metrics.ReviewsMaterialized.Add(ctx, 1)
		}
	}
	return t, nil
}

// Update applies partial updates to a live task.
func (s *TaskService) Update(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateTask(ctx, id, req)
}

// SoftDelete moves a task into the recycle bin, hiding its review with it.
func (s *TaskService) SoftDelete(ctx context.Context, id, deletedBy string) error {
	// Without an explicit operator the deletion is attributed to the admin
	// account, looked up dynamically rather than assumed.
	if deletedBy == "" {
		admin, err := s.store.FindUserByRole(ctx, user.RoleAdmin)
		if err != nil {
			return fmt.Errorf("resolve admin user: %w", err)
		}
		deletedBy = admin.ID
	}
	if err := s.store.SoftDeleteTask(ctx, id, deletedBy); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.TasksSoftDeleted.Add(ctx, 1)
	}
	return nil
}

// Restore brings a soft-deleted task back, review state intact.
func (s *TaskService) Restore(ctx context.Context, id string) error {
	if err := s.store.RestoreTask(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.TasksRestored.Add(ctx, 1)
	}
	return nil
}

// PermanentDelete removes a soft-deleted task and its review for good.
// Live tasks must be soft-deleted first.
func (s *TaskService) PermanentDelete(ctx context.Context, id string) error {
	return s.store.PermanentDeleteTask(ctx, id)
}

// Approve marks the task's current pending stage approved and advances the
// review, completing it after the last stage.
func (s *TaskService) Approve(ctx context.Context, taskID string) (*task.Task, error) {
	t, err := s.progress(ctx, taskID, "approve", (*review.TaskReview).ApplyApproval)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.StagesApproved.Add(ctx, 1)
	}
	return t, nil
}

// Reject marks the task's current pending stage rejected, terminating the
// review.
func (s *TaskService) Reject(ctx context.Context, taskID string) (*task.Task, error) {
	t, err := s.progress(ctx, taskID, "reject", (*review.TaskReview).ApplyRejection)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.StagesRejected.Add(ctx, 1)
	}
	return t, nil
}

func (s *TaskService) progress(ctx context.Context, taskID, action string, apply func(*review.TaskReview) (*review.Stage, error)) (*task.Task, error) {
	ctx, span := otel.StartStageActionSpan(ctx, taskID, action)
	defer span.End()

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.IsDeleted {
		return nil, fmt.Errorf("task %s is deleted: %w", taskID, domain.ErrConflict)
	}
	if t.Review == nil {
		return nil, fmt.Errorf("task %s has no review: %w", taskID, domain.ErrNotFound)
	}

	stage, err := apply(t.Review)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveReviewProgress(ctx, t.Review, stage); err != nil {
		return nil, err
	}
	return t, nil
}
