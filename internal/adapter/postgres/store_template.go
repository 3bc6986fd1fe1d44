package postgres

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/port/database"
)

// --- Review step templates ---

const stepTemplateCols = `t.id, t.name, t.code, t.step_type, t.description, t.is_active,
	(SELECT COUNT(*) FROM review_config_steps cs WHERE cs.template_id = t.id),
	t.created_at, t.updated_at`

func scanStepTemplate(row scannable) (review.StepTemplate, error) {
	var st review.StepTemplate
	err := row.Scan(&st.ID, &st.Name, &st.Code, &st.StepType, &st.Description,
		&st.IsActive, &st.StepRefCount, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return st, fmt.Errorf("scan step template: %w", err)
	}
	return st, nil
}

func (s *Store) ListStepTemplates(ctx context.Context, page domain.PageRequest, filter database.TemplateFilter) (*domain.Page[review.StepTemplate], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM review_step_templates t
		 WHERE ($1 = '' OR t.name ILIKE $2 OR t.code ILIKE $2)
		   AND ($3 = '' OR t.step_type = $3)
		   AND (NOT $4 OR t.is_active)`,
		page.Keyword, kw, string(filter.StepType), filter.ActiveOnly).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count step templates: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+stepTemplateCols+`
		 FROM review_step_templates t
		 WHERE ($1 = '' OR t.name ILIKE $2 OR t.code ILIKE $2)
		   AND ($3 = '' OR t.step_type = $3)
		   AND (NOT $4 OR t.is_active)
		 ORDER BY t.created_at DESC
		 LIMIT $5 OFFSET $6`,
		page.Keyword, kw, string(filter.StepType), filter.ActiveOnly, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list step templates: %w", err)
	}
	defer rows.Close()

	var templates []review.StepTemplate
	for rows.Next() {
		st, err := scanStepTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list step templates: %w", err)
	}

	for i := range templates {
		roles, err := s.templateRoles(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Roles = roles
	}
	return domain.NewPage(templates, total, page), nil
}

func (s *Store) ListStepTemplatesByType(ctx context.Context, stepType review.StepType) ([]review.StepTemplate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+stepTemplateCols+`
		 FROM review_step_templates t
		 WHERE t.step_type = $1 AND t.is_active
		 ORDER BY t.name ASC`, string(stepType))
	if err != nil {
		return nil, fmt.Errorf("list step templates by type: %w", err)
	}
	defer rows.Close()

	var templates []review.StepTemplate
	for rows.Next() {
		st, err := scanStepTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list step templates by type: %w", err)
	}

	for i := range templates {
		roles, err := s.templateRoles(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Roles = roles
	}
	return orEmpty(templates), nil
}

func (s *Store) GetStepTemplate(ctx context.Context, id string) (*review.StepTemplate, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+stepTemplateCols+` FROM review_step_templates t WHERE t.id = $1`, id)

	st, err := scanStepTemplate(row)
	if err != nil {
		return nil, notFoundWrap(err, "get step template %s", id)
	}
	roles, err := s.templateRoles(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	st.Roles = roles
	return &st, nil
}

func (s *Store) CreateStepTemplate(ctx context.Context, req review.CreateTemplateRequest) (*review.StepTemplate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	active := req.IsActive == nil || *req.IsActive
	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO review_step_templates (name, code, step_type, description, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		req.Name, req.Code, string(req.StepType), req.Description, active).Scan(&id)
	if err != nil {
		return nil, constraintWrap(err, "create step template %s", req.Code)
	}

	for _, rcID := range req.RoleCategoryIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO review_step_template_roles (template_id, role_category_id)
			 VALUES ($1, $2) ON CONFLICT (template_id, role_category_id) DO NOTHING`,
			id, rcID)
		if err != nil {
			return nil, constraintWrap(err, "bind role %s to template", rcID)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetStepTemplate(ctx, id)
}

func (s *Store) UpdateStepTemplate(ctx context.Context, id string, req review.UpdateTemplateRequest) (*review.StepTemplate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stepType *string
	if req.StepType != nil {
		st := string(*req.StepType)
		stepType = &st
	}
	tag, err := tx.Exec(ctx,
		`UPDATE review_step_templates SET
			name = COALESCE($2, name),
			code = COALESCE($3, code),
			step_type = COALESCE($4, step_type),
			description = COALESCE($5, description),
			is_active = COALESCE($6, is_active),
			updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Code, stepType, req.Description, req.IsActive)
	if err := execExpectOne(tag, err, "update step template %s", id); err != nil {
		return nil, err
	}

	// A present role list is a full replacement; nil leaves bindings alone.
	if req.RoleCategoryIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM review_step_template_roles WHERE template_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear template roles %s: %w", id, err)
		}
		for _, rcID := range *req.RoleCategoryIDs {
			_, err = tx.Exec(ctx,
				`INSERT INTO review_step_template_roles (template_id, role_category_id)
				 VALUES ($1, $2) ON CONFLICT (template_id, role_category_id) DO NOTHING`,
				id, rcID)
			if err != nil {
				return nil, constraintWrap(err, "bind role %s to template", rcID)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetStepTemplate(ctx, id)
}

func (s *Store) DeleteStepTemplate(ctx context.Context, id string) error {
	var refs int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM review_config_steps WHERE template_id = $1`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("check template references %s: %w", id, err)
	}
	if refs > 0 {
		return fmt.Errorf("step template %s is used by %d config steps: %w", id, refs, domain.ErrConflict)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM review_step_templates WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete step template %s", id)
}

func (s *Store) AssignTemplateRole(ctx context.Context, templateID, roleCategoryID string) (*review.RoleBinding, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO review_step_template_roles (template_id, role_category_id)
		 VALUES ($1, $2)
		 RETURNING id`, templateID, roleCategoryID).Scan(&id)
	if err != nil {
		return nil, constraintWrap(err, "assign role %s to template %s", roleCategoryID, templateID)
	}

	var b review.RoleBinding
	err = s.pool.QueryRow(ctx,
		`SELECT tr.id, tr.role_category_id, rc.name, rc.code, tr.created_at
		 FROM review_step_template_roles tr
		 JOIN role_categories rc ON rc.id = tr.role_category_id
		 WHERE tr.id = $1`, id).
		Scan(&b.ID, &b.RoleCategoryID, &b.RoleName, &b.RoleCode, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("load role binding %s: %w", id, err)
	}
	return &b, nil
}

func (s *Store) BatchAssignTemplateRoles(ctx context.Context, templateID string, roleCategoryIDs []string) (*review.BatchAssignResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var res review.BatchAssignResult
	for _, rcID := range roleCategoryIDs {
		tag, err := tx.Exec(ctx,
			`INSERT INTO review_step_template_roles (template_id, role_category_id)
			 VALUES ($1, $2) ON CONFLICT (template_id, role_category_id) DO NOTHING`,
			templateID, rcID)
		if err != nil {
			return nil, constraintWrap(err, "assign role %s to template %s", rcID, templateID)
		}
		if tag.RowsAffected() == 0 {
			res.Skipped++
		} else {
			res.Created++
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &res, nil
}

func (s *Store) RemoveTemplateRole(ctx context.Context, templateID, roleCategoryID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM review_step_template_roles WHERE template_id = $1 AND role_category_id = $2`,
		templateID, roleCategoryID)
	return execExpectOne(tag, err, "remove role %s from template %s", roleCategoryID, templateID)
}

func (s *Store) templateRoles(ctx context.Context, templateID string) ([]review.RoleBinding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tr.id, tr.role_category_id, rc.name, rc.code, tr.created_at
		 FROM review_step_template_roles tr
		 JOIN role_categories rc ON rc.id = tr.role_category_id
		 WHERE tr.template_id = $1
		 ORDER BY tr.created_at ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template roles %s: %w", templateID, err)
	}
	defer rows.Close()

	var bindings []review.RoleBinding
	for rows.Next() {
		var b review.RoleBinding
		if err := rows.Scan(&b.ID, &b.RoleCategoryID, &b.RoleName, &b.RoleCode, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role binding: %w", err)
		}
		bindings = append(bindings, b)
	}
	return orEmpty(bindings), rows.Err()
}
