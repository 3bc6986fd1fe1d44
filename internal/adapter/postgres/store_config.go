package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
)

// --- Review configurations ---

const configCols = `c.id, c.name, c.code, c.description, c.is_active,
	EXISTS (SELECT 1 FROM task_categories tc WHERE tc.review_config_id = c.id),
	c.created_at, c.updated_at`

func scanConfig(row scannable) (review.Configuration, error) {
	var c review.Configuration
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IsActive,
		&c.IsRelevance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, fmt.Errorf("scan review config: %w", err)
	}
	return c, nil
}

func (s *Store) ListConfigs(ctx context.Context, page domain.PageRequest) (*domain.Page[review.Configuration], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM review_configs c WHERE ($1 = '' OR c.name ILIKE $2 OR c.code ILIKE $2)`,
		page.Keyword, kw).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count review configs: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+configCols+`
		 FROM review_configs c
		 WHERE ($1 = '' OR c.name ILIKE $2 OR c.code ILIKE $2)
		 ORDER BY c.created_at DESC
		 LIMIT $3 OFFSET $4`,
		page.Keyword, kw, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list review configs: %w", err)
	}
	defer rows.Close()

	var configs []review.Configuration
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list review configs: %w", err)
	}

	for i := range configs {
		if err := s.loadConfigDetails(ctx, &configs[i]); err != nil {
			return nil, err
		}
	}
	return domain.NewPage(configs, total, page), nil
}

func (s *Store) GetConfig(ctx context.Context, id string) (*review.Configuration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+configCols+` FROM review_configs c WHERE c.id = $1`, id)

	c, err := scanConfig(row)
	if err != nil {
		return nil, notFoundWrap(err, "get review config %s", id)
	}
	if err := s.loadConfigDetails(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateConfig(ctx context.Context, req review.CreateConfigRequest) (*review.Configuration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	active := req.IsActive == nil || *req.IsActive
	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO review_configs (name, code, description, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		req.Name, req.Code, req.Description, active).Scan(&id)
	if err != nil {
		return nil, constraintWrap(err, "create review config %s", req.Code)
	}

	if err := replaceConfigSteps(ctx, tx, id, req.Steps); err != nil {
		return nil, err
	}
	if err := bindConfigCategories(ctx, tx, id, req.TaskCategoryIDs); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetConfig(ctx, id)
}

func (s *Store) UpdateConfig(ctx context.Context, id string, req review.UpdateConfigRequest) (*review.Configuration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var active bool
	if err := tx.QueryRow(ctx,
		`SELECT is_active FROM review_configs WHERE id = $1 FOR UPDATE`, id).Scan(&active); err != nil {
		return nil, notFoundWrap(err, "update review config %s", id)
	}
	if !active {
		return nil, fmt.Errorf("review config %s is disabled: %w", id, domain.ErrConflict)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE review_configs SET
			name = COALESCE($2, name),
			code = COALESCE($3, code),
			description = COALESCE($4, description),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Code, req.Description, req.IsActive)
	if err := execExpectOne(tag, err, "update review config %s", id); err != nil {
		return nil, err
	}

	// A present category list is a full replacement; nil leaves bindings alone.
	if req.TaskCategoryIDs != nil {
		if err := bindConfigCategories(ctx, tx, id, *req.TaskCategoryIDs); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetConfig(ctx, id)
}

func (s *Store) DeleteConfig(ctx context.Context, id string) error {
	var bound int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_categories WHERE review_config_id = $1`, id).Scan(&bound)
	if err != nil {
		return fmt.Errorf("check config bindings %s: %w", id, err)
	}
	// Bindings must be cleared explicitly (update with an empty category list)
	// before the configuration can go away.
	if bound > 0 {
		return fmt.Errorf("review config %s is bound to %d task categories: %w", id, bound, domain.ErrConflict)
	}

	var reviews int64
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_reviews WHERE config_id = $1`, id).Scan(&reviews)
	if err != nil {
		return fmt.Errorf("check config references %s: %w", id, err)
	}
	if reviews > 0 {
		return fmt.Errorf("review config %s has %d materialized reviews: %w", id, reviews, domain.ErrIntegrity)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM review_configs WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete review config %s", id)
}

// SetConfigSteps replaces the configuration's step list atomically.
func (s *Store) SetConfigSteps(ctx context.Context, configID string, steps []review.StepInput) (*review.Configuration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM review_configs WHERE id = $1)`, configID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check review config %s: %w", configID, err)
	}
	if !exists {
		return nil, fmt.Errorf("review config %s: %w", configID, domain.ErrNotFound)
	}

	if err := replaceConfigSteps(ctx, tx, configID, steps); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE review_configs SET updated_at = now() WHERE id = $1`, configID); err != nil {
		return nil, fmt.Errorf("touch review config %s: %w", configID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetConfig(ctx, configID)
}

// GetConfigByTaskCategory resolves the configuration bound to a task category.
func (s *Store) GetConfigByTaskCategory(ctx context.Context, taskCategoryID string) (*review.Configuration, error) {
	var configID string
	err := s.pool.QueryRow(ctx,
		`SELECT tc.review_config_id FROM task_categories tc
		 WHERE tc.id = $1 AND tc.review_config_id IS NOT NULL`, taskCategoryID).Scan(&configID)
	if err != nil {
		return nil, notFoundWrap(err, "review config for task category %s", taskCategoryID)
	}
	return s.GetConfig(ctx, configID)
}

func (s *Store) FindReviewersByRoleCategory(ctx context.Context, roleCategoryID string) ([]review.Reviewer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.name, u.username FROM users u
		 WHERE u.role_category_id = $1 AND u.is_active
		 ORDER BY u.name ASC`, roleCategoryID)
	if err != nil {
		return nil, fmt.Errorf("list reviewers for role %s: %w", roleCategoryID, err)
	}
	defer rows.Close()

	var reviewers []review.Reviewer
	for rows.Next() {
		var r review.Reviewer
		if err := rows.Scan(&r.ID, &r.Name, &r.Username); err != nil {
			return nil, fmt.Errorf("scan reviewer: %w", err)
		}
		reviewers = append(reviewers, r)
	}
	return orEmpty(reviewers), rows.Err()
}

func (s *Store) loadConfigDetails(ctx context.Context, c *review.Configuration) error {
	steps, err := s.configSteps(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Steps = steps

	rows, err := s.pool.Query(ctx,
		`SELECT tc.id, tc.name, tc.code FROM task_categories tc
		 WHERE tc.review_config_id = $1 ORDER BY tc.name ASC`, c.ID)
	if err != nil {
		return fmt.Errorf("list config categories %s: %w", c.ID, err)
	}
	defer rows.Close()

	var cats []review.CategorySummary
	for rows.Next() {
		var cs review.CategorySummary
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Code); err != nil {
			return fmt.Errorf("scan config category: %w", err)
		}
		cats = append(cats, cs)
	}
	c.Categories = orEmpty(cats)
	return rows.Err()
}

func (s *Store) configSteps(ctx context.Context, configID string) ([]review.Step, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cs.id, cs.config_id, cs.template_id, cs.step_order, cs.is_required, cs.created_at
		 FROM review_config_steps cs
		 WHERE cs.config_id = $1
		 ORDER BY cs.step_order ASC`, configID)
	if err != nil {
		return nil, fmt.Errorf("list config steps %s: %w", configID, err)
	}
	defer rows.Close()

	var steps []review.Step
	for rows.Next() {
		var st review.Step
		if err := rows.Scan(&st.ID, &st.ConfigID, &st.TemplateID, &st.StepOrder, &st.IsRequired, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan config step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list config steps %s: %w", configID, err)
	}

	for i := range steps {
		tmpl, err := s.GetStepTemplate(ctx, steps[i].TemplateID)
		if err != nil {
			return nil, err
		}
		steps[i].Template = tmpl
	}
	return orEmpty(steps), nil
}

// replaceConfigSteps swaps the full step list inside an open transaction.
func replaceConfigSteps(ctx context.Context, tx pgx.Tx, configID string, steps []review.StepInput) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM review_config_steps WHERE config_id = $1`, configID); err != nil {
		return fmt.Errorf("clear config steps %s: %w", configID, err)
	}
	for _, in := range steps {
		_, err := tx.Exec(ctx,
			`INSERT INTO review_config_steps (config_id, template_id, step_order, is_required)
			 VALUES ($1, $2, $3, $4)`,
			configID, in.TemplateID, in.StepOrder, in.Required())
		if err != nil {
			return constraintWrap(err, "insert config step %d", in.StepOrder)
		}
	}
	return nil
}

// bindConfigCategories makes the given categories the complete binding set
// for the configuration, releasing any category not in the list.
func bindConfigCategories(ctx context.Context, tx pgx.Tx, configID string, categoryIDs []string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE task_categories SET review_config_id = NULL, updated_at = now()
		 WHERE review_config_id = $1`, configID); err != nil {
		return fmt.Errorf("unbind config categories %s: %w", configID, err)
	}
	for _, tcID := range categoryIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE task_categories SET review_config_id = $1, updated_at = now()
			 WHERE id = $2`, configID, tcID)
		if err != nil {
			return fmt.Errorf("bind task category %s: %w", tcID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("task category %s: %w", tcID, domain.ErrIntegrity)
		}
	}
	return nil
}
