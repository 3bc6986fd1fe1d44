package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/domain/task"
	"github.com/buildcost/buildcost/internal/port/database"
)

// --- Tasks ---

const taskCols = `t.id, t.task_name, t.project_id, t.task_category_id, t.task_leader_id,
	t.description, t.is_review_required, t.attachments, t.is_deleted, t.deleted_at, t.deleted_by,
	t.created_at, t.updated_at`

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	var deletedBy *string
	err := row.Scan(&t.ID, &t.TaskName, &t.ProjectID, &t.TaskCategoryID, &t.TaskLeaderID,
		&t.Description, &t.IsReviewRequired, &t.Attachments, &t.IsDeleted, &t.DeletedAt, &deletedBy,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, fmt.Errorf("scan task: %w", err)
	}
	if deletedBy != nil {
		t.DeletedBy = *deletedBy
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, page domain.PageRequest, filter database.TaskFilter) (*domain.Page[task.Task], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	deleted := false
	if filter.Deleted != nil {
		deleted = *filter.Deleted
	}

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks t
		 WHERE t.is_deleted = $1
		   AND ($2 = '' OR t.task_name ILIKE $3)
		   AND ($4 = '' OR t.project_id = $4::uuid)
		   AND ($5 = '' OR t.task_category_id = $5::uuid)`,
		deleted, page.Keyword, kw, filter.ProjectID, filter.TaskCategoryID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+taskCols+`
		 FROM tasks t
		 WHERE t.is_deleted = $1
		   AND ($2 = '' OR t.task_name ILIKE $3)
		   AND ($4 = '' OR t.project_id = $4::uuid)
		   AND ($5 = '' OR t.task_category_id = $5::uuid)
		 ORDER BY t.created_at DESC
		 LIMIT $6 OFFSET $7`,
		deleted, page.Keyword, kw, filter.ProjectID, filter.TaskCategoryID, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	for i := range tasks {
		if err := s.loadTaskDetails(ctx, &tasks[i]); err != nil {
			return nil, err
		}
	}
	return domain.NewPage(tasks, total, page), nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks t WHERE t.id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	if err := s.loadTaskDetails(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask inserts the task, its participants and, for review-required
// tasks, the materialized review with one stage per assignment, in a single
// transaction.
func (s *Store) CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var taskID string
	err = tx.QueryRow(ctx,
		`INSERT INTO tasks (task_name, project_id, task_category_id, task_leader_id, description, is_review_required, attachments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		req.TaskName, req.ProjectID, req.TaskCategoryID, req.TaskLeaderID,
		req.Description, req.ReviewRequired(), pgTextArray(req.Attachments)).Scan(&taskID)
	if err != nil {
		return nil, constraintWrap(err, "create task %s", req.TaskName)
	}

	for _, uid := range req.ParticipantIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO task_participants (task_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (task_id, user_id) DO NOTHING`, taskID, uid)
		if err != nil {
			return nil, constraintWrap(err, "add participant %s", uid)
		}
	}

	if req.ReviewRequired() {
		configID := req.ReviewConfigID
		if configID == "" {
			// Structural placeholder parenting this task's stages only;
			// never surfaced as a reusable configuration.
			err = tx.QueryRow(ctx,
				`INSERT INTO review_configs (name, code, description, is_active)
				 VALUES ($1, $2, '', false)
				 RETURNING id`,
				fmt.Sprintf("Task %s review", taskID),
				fmt.Sprintf("TASK-%.8s-%d", taskID, time.Now().Unix())).Scan(&configID)
			if err != nil {
				return nil, constraintWrap(err, "create placeholder config for task %s", taskID)
			}
		}

		var reviewID string
		err = tx.QueryRow(ctx,
			`INSERT INTO task_reviews (task_id, config_id, status, current_step_order)
			 VALUES ($1, $2, $3, 1)
			 RETURNING id`,
			taskID, configID, string(review.WorkflowPending)).Scan(&reviewID)
		if err != nil {
			return nil, constraintWrap(err, "create task review")
		}

		for i, a := range req.Stages {
			_, err = tx.Exec(ctx,
				`INSERT INTO task_review_stages (task_review_id, step_template_id, step_order, step_name, reviewer_id, status)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				reviewID, a.StepTemplateID, i+1, a.StepName, a.ReviewerID, string(review.StagePending))
			if err != nil {
				return nil, constraintWrap(err, "create review stage %d", i+1)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetTask(ctx, taskID)
}

func (s *Store) UpdateTask(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var attachments []string
	if req.Attachments != nil {
		attachments = pgTextArray(*req.Attachments)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET
			task_name = COALESCE($2, task_name),
			task_leader_id = COALESCE($3::uuid, task_leader_id),
			description = COALESCE($4, description),
			attachments = COALESCE($5, attachments),
			updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`,
		id, req.TaskName, req.TaskLeaderID, req.Description, attachments)
	if err := execExpectOne(tag, err, "update task %s", id); err != nil {
		return nil, err
	}

	if req.ParticipantIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM task_participants WHERE task_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear task participants %s: %w", id, err)
		}
		for _, uid := range *req.ParticipantIDs {
			_, err = tx.Exec(ctx,
				`INSERT INTO task_participants (task_id, user_id) VALUES ($1, $2)
				 ON CONFLICT (task_id, user_id) DO NOTHING`, id, uid)
			if err != nil {
				return nil, constraintWrap(err, "add participant %s", uid)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetTask(ctx, id)
}

// SoftDeleteTask marks the task and its whole review tree deleted. Already
// deleted tasks conflict rather than re-delete.
func (s *Store) SoftDeleteTask(ctx context.Context, id, deletedBy string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`, id, nullIfEmpty(deletedBy))
	if err != nil {
		return fmt.Errorf("soft delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.taskDeleteState(ctx, id, "soft delete")
	}

	if err := cascadeReviewDeletion(ctx, tx, id, true); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// RestoreTask brings a soft-deleted task and its review tree back.
func (s *Store) RestoreTask(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET is_deleted = FALSE, deleted_at = NULL, deleted_by = NULL, updated_at = now()
		 WHERE id = $1 AND is_deleted`, id)
	if err != nil {
		return fmt.Errorf("restore task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.taskDeleteState(ctx, id, "restore")
	}

	if err := cascadeReviewDeletion(ctx, tx, id, false); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// PermanentDeleteTask removes a soft-deleted task for good. Live tasks must
// be soft-deleted first.
func (s *Store) PermanentDeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND is_deleted`, id)
	if err != nil {
		return fmt.Errorf("permanent delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.taskDeleteState(ctx, id, "permanent delete")
	}
	return nil
}

// SaveReviewProgress persists the workflow fields mutated by an approval or
// rejection: the review header and the acted-on stage.
func (s *Store) SaveReviewProgress(ctx context.Context, tr *review.TaskReview, stage *review.Stage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE task_reviews SET status = $2, current_step_order = $3, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`,
		tr.ID, string(tr.Status), tr.CurrentStepOrder)
	if err := execExpectOne(tag, err, "update task review %s", tr.ID); err != nil {
		return err
	}

	tag, err = tx.Exec(ctx,
		`UPDATE task_review_stages SET status = $2, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`,
		stage.ID, string(stage.Status))
	if err := execExpectOne(tag, err, "update review stage %s", stage.ID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// taskDeleteState distinguishes a missing task from one in the wrong
// deletion state after a zero-row update.
func (s *Store) taskDeleteState(ctx context.Context, id, op string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("%s task %s: %w", op, id, err)
	}
	if !exists {
		return fmt.Errorf("%s task %s: %w", op, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s task %s: %w", op, id, domain.ErrConflict)
}

func cascadeReviewDeletion(ctx context.Context, tx pgx.Tx, taskID string, deleted bool) error {
	if _, err := tx.Exec(ctx,
		`UPDATE task_reviews SET is_deleted = $2,
			deleted_at = CASE WHEN $2 THEN now() ELSE NULL END,
			updated_at = now()
		 WHERE task_id = $1`, taskID, deleted); err != nil {
		return fmt.Errorf("cascade review deletion for task %s: %w", taskID, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE task_review_stages SET is_deleted = $2,
			deleted_at = CASE WHEN $2 THEN now() ELSE NULL END,
			updated_at = now()
		 WHERE task_review_id IN (SELECT id FROM task_reviews WHERE task_id = $1)`,
		taskID, deleted); err != nil {
		return fmt.Errorf("cascade stage deletion for task %s: %w", taskID, err)
	}
	return nil
}

func (s *Store) loadTaskDetails(ctx context.Context, t *task.Task) error {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM task_participants WHERE task_id = $1`, t.ID)
	if err != nil {
		return fmt.Errorf("list task participants %s: %w", t.ID, err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, uid)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list task participants %s: %w", t.ID, err)
	}
	t.ParticipantIDs = orEmpty(participants)

	tr, err := s.taskReview(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Review = tr
	return nil
}

func (s *Store) taskReview(ctx context.Context, taskID string) (*review.TaskReview, error) {
	var tr review.TaskReview
	err := s.pool.QueryRow(ctx,
		`SELECT id, task_id, config_id, status, current_step_order, is_deleted, deleted_at, created_at, updated_at
		 FROM task_reviews WHERE task_id = $1`, taskID).
		Scan(&tr.ID, &tr.TaskID, &tr.ConfigID, &tr.Status, &tr.CurrentStepOrder,
			&tr.IsDeleted, &tr.DeletedAt, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task review %s: %w", taskID, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, task_review_id, step_template_id, step_order, step_name, reviewer_id, status, is_deleted, deleted_at, created_at, updated_at
		 FROM task_review_stages WHERE task_review_id = $1 ORDER BY step_order ASC`, tr.ID)
	if err != nil {
		return nil, fmt.Errorf("list review stages %s: %w", tr.ID, err)
	}
	defer rows.Close()

	var stages []review.Stage
	for rows.Next() {
		var st review.Stage
		if err := rows.Scan(&st.ID, &st.TaskReviewID, &st.StepTemplateID, &st.StepOrder, &st.StepName,
			&st.ReviewerID, &st.Status, &st.IsDeleted, &st.DeletedAt, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review stage: %w", err)
		}
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list review stages %s: %w", tr.ID, err)
	}
	tr.Stages = orEmpty(stages)
	return &tr, nil
}
