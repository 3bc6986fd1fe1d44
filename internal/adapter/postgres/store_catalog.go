package postgres

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/catalog"
)

// --- Role categories ---

const roleCategoryCols = `rc.id, rc.name, rc.code, rc.description, rc.is_active,
	(SELECT COUNT(*) FROM users u WHERE u.role_category_id = rc.id),
	rc.created_at, rc.updated_at`

func scanRoleCategory(row scannable) (catalog.RoleCategory, error) {
	var rc catalog.RoleCategory
	err := row.Scan(&rc.ID, &rc.Name, &rc.Code, &rc.Description, &rc.IsActive,
		&rc.UserCount, &rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		return rc, fmt.Errorf("scan role category: %w", err)
	}
	return rc, nil
}

func (s *Store) ListRoleCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[catalog.RoleCategory], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM role_categories rc WHERE ($1 = '' OR rc.name ILIKE $2 OR rc.code ILIKE $2)`,
		page.Keyword, kw).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count role categories: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+roleCategoryCols+`
		 FROM role_categories rc
		 WHERE ($1 = '' OR rc.name ILIKE $2 OR rc.code ILIKE $2)
		 ORDER BY rc.created_at DESC
		 LIMIT $3 OFFSET $4`,
		page.Keyword, kw, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list role categories: %w", err)
	}
	defer rows.Close()

	var cats []catalog.RoleCategory
	for rows.Next() {
		rc, err := scanRoleCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list role categories: %w", err)
	}
	return domain.NewPage(cats, total, page), nil
}

func (s *Store) ListRoleCategoryOptions(ctx context.Context) ([]catalog.RoleCategory, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roleCategoryCols+`
		 FROM role_categories rc WHERE rc.is_active ORDER BY rc.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list role category options: %w", err)
	}
	defer rows.Close()

	var cats []catalog.RoleCategory
	for rows.Next() {
		rc, err := scanRoleCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, rc)
	}
	return orEmpty(cats), rows.Err()
}

func (s *Store) GetRoleCategory(ctx context.Context, id string) (*catalog.RoleCategory, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+roleCategoryCols+` FROM role_categories rc WHERE rc.id = $1`, id)

	rc, err := scanRoleCategory(row)
	if err != nil {
		return nil, notFoundWrap(err, "get role category %s", id)
	}
	return &rc, nil
}

func (s *Store) CreateRoleCategory(ctx context.Context, req catalog.CreateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO role_categories (name, code, description, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, code, description, is_active, 0::bigint, created_at, updated_at`,
		req.Name, req.Code, req.Description, req.Active())

	rc, err := scanRoleCategory(row)
	if err != nil {
		return nil, constraintWrap(err, "create role category %s", req.Code)
	}
	return &rc, nil
}

func (s *Store) UpdateRoleCategory(ctx context.Context, id string, req catalog.UpdateRoleCategoryRequest) (*catalog.RoleCategory, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE role_categories SET
			name = COALESCE($2, name),
			code = COALESCE($3, code),
			description = COALESCE($4, description),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Code, req.Description, req.IsActive)
	if err := execExpectOne(tag, err, "update role category %s", id); err != nil {
		return nil, err
	}
	return s.GetRoleCategory(ctx, id)
}

func (s *Store) DeleteRoleCategory(ctx context.Context, id string) error {
	var users, bindings int64
	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role_category_id = $1),
			(SELECT COUNT(*) FROM review_step_template_roles WHERE role_category_id = $1)`,
		id).Scan(&users, &bindings)
	if err != nil {
		return fmt.Errorf("check role category references %s: %w", id, err)
	}
	if users > 0 || bindings > 0 {
		return fmt.Errorf("role category %s is still referenced: %w", id, domain.ErrConflict)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM role_categories WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete role category %s", id)
}

// --- Task categories ---

const taskCategoryCols = `tc.id, tc.name, tc.code, tc.description, tc.is_active, tc.review_config_id,
	(SELECT COUNT(*) FROM tasks t WHERE t.task_category_id = tc.id AND NOT t.is_deleted),
	tc.created_at, tc.updated_at`

func scanTaskCategory(row scannable) (catalog.TaskCategory, error) {
	var tc catalog.TaskCategory
	err := row.Scan(&tc.ID, &tc.Name, &tc.Code, &tc.Description, &tc.IsActive,
		&tc.ReviewConfigID, &tc.TaskCount, &tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		return tc, fmt.Errorf("scan task category: %w", err)
	}
	return tc, nil
}

func (s *Store) ListTaskCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[catalog.TaskCategory], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_categories tc WHERE ($1 = '' OR tc.name ILIKE $2 OR tc.code ILIKE $2)`,
		page.Keyword, kw).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count task categories: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+taskCategoryCols+`
		 FROM task_categories tc
		 WHERE ($1 = '' OR tc.name ILIKE $2 OR tc.code ILIKE $2)
		 ORDER BY tc.created_at DESC
		 LIMIT $3 OFFSET $4`,
		page.Keyword, kw, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list task categories: %w", err)
	}
	defer rows.Close()

	var cats []catalog.TaskCategory
	for rows.Next() {
		tc, err := scanTaskCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list task categories: %w", err)
	}
	return domain.NewPage(cats, total, page), nil
}

func (s *Store) ListTaskCategoryOptions(ctx context.Context) ([]catalog.TaskCategoryOption, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tc.id, tc.name, tc.code, tc.review_config_id, tc.review_config_id IS NOT NULL
		 FROM task_categories tc WHERE tc.is_active ORDER BY tc.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list task category options: %w", err)
	}
	defer rows.Close()

	var opts []catalog.TaskCategoryOption
	for rows.Next() {
		var o catalog.TaskCategoryOption
		if err := rows.Scan(&o.ID, &o.Name, &o.Code, &o.ReviewConfigID, &o.IsRelevance); err != nil {
			return nil, fmt.Errorf("scan task category option: %w", err)
		}
		opts = append(opts, o)
	}
	return orEmpty(opts), rows.Err()
}

func (s *Store) GetTaskCategory(ctx context.Context, id string) (*catalog.TaskCategory, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskCategoryCols+` FROM task_categories tc WHERE tc.id = $1`, id)

	tc, err := scanTaskCategory(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task category %s", id)
	}
	return &tc, nil
}

func (s *Store) CreateTaskCategory(ctx context.Context, req catalog.CreateTaskCategoryRequest) (*catalog.TaskCategory, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO task_categories (name, code, description, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, code, description, is_active, review_config_id, 0::bigint, created_at, updated_at`,
		req.Name, req.Code, req.Description, req.Active())

	tc, err := scanTaskCategory(row)
	if err != nil {
		return nil, constraintWrap(err, "create task category %s", req.Code)
	}
	return &tc, nil
}

func (s *Store) UpdateTaskCategory(ctx context.Context, id string, req catalog.UpdateTaskCategoryRequest) (*catalog.TaskCategory, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE task_categories SET
			name = COALESCE($2, name),
			code = COALESCE($3, code),
			description = COALESCE($4, description),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Code, req.Description, req.IsActive)
	if err := execExpectOne(tag, err, "update task category %s", id); err != nil {
		return nil, err
	}
	return s.GetTaskCategory(ctx, id)
}

func (s *Store) DeleteTaskCategory(ctx context.Context, id string) error {
	var tasks int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE task_category_id = $1`, id).Scan(&tasks)
	if err != nil {
		return fmt.Errorf("check task category references %s: %w", id, err)
	}
	if tasks > 0 {
		return fmt.Errorf("task category %s still has %d tasks: %w", id, tasks, domain.ErrConflict)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM task_categories WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete task category %s", id)
}

// likePattern builds a contains-match ILIKE pattern for a keyword.
func likePattern(keyword string) string {
	return "%" + keyword + "%"
}
