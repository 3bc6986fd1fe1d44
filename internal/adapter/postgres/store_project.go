package postgres

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/project"
)

// --- Projects ---

const projectCols = `p.id, p.project_name, p.project_type, p.client_unit, p.project_source,
	p.contract_amount, p.description, p.start_date, p.end_date, p.creator_id, u.name,
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND NOT t.is_deleted),
	p.created_at, p.updated_at`

const projectFrom = `FROM projects p LEFT JOIN users u ON u.id = p.creator_id`

func scanProject(row scannable) (project.Project, error) {
	var p project.Project
	var creatorID, creatorName *string
	err := row.Scan(&p.ID, &p.ProjectName, &p.ProjectType, &p.ClientUnit, &p.ProjectSource,
		&p.ContractAmount, &p.Description, &p.StartDate, &p.EndDate, &creatorID, &creatorName,
		&p.TaskCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, fmt.Errorf("scan project: %w", err)
	}
	if creatorID != nil {
		p.CreatorID = *creatorID
	}
	if creatorName != nil {
		p.CreatorName = *creatorName
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, page domain.PageRequest) (*domain.Page[project.Project], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects p WHERE ($1 = '' OR p.project_name ILIKE $2 OR p.client_unit ILIKE $2)`,
		page.Keyword, kw).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+projectCols+` `+projectFrom+`
		 WHERE ($1 = '' OR p.project_name ILIKE $2 OR p.client_unit ILIKE $2)
		 ORDER BY p.created_at DESC
		 LIMIT $3 OFFSET $4`,
		page.Keyword, kw, page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return domain.NewPage(projects, total, page), nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*project.Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectCols+` `+projectFrom+` WHERE p.id = $1`, id)

	p, err := scanProject(row)
	if err != nil {
		return nil, notFoundWrap(err, "get project %s", id)
	}
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, req project.CreateRequest) (*project.Project, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO projects (project_name, project_type, client_unit, project_source, contract_amount, description, start_date, end_date, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		req.ProjectName, req.ProjectType, req.ClientUnit, req.ProjectSource,
		req.ContractAmount, req.Description, req.StartDate, req.EndDate, nullIfEmpty(req.CreatorID)).Scan(&id)
	if err != nil {
		return nil, constraintWrap(err, "create project %s", req.ProjectName)
	}
	return s.GetProject(ctx, id)
}

func (s *Store) UpdateProject(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET
			project_name = COALESCE($2, project_name),
			project_type = COALESCE($3, project_type),
			client_unit = COALESCE($4, client_unit),
			project_source = COALESCE($5, project_source),
			contract_amount = COALESCE($6, contract_amount),
			description = COALESCE($7, description),
			start_date = COALESCE($8, start_date),
			end_date = COALESCE($9, end_date),
			updated_at = now()
		 WHERE id = $1`,
		id, req.ProjectName, req.ProjectType, req.ClientUnit, req.ProjectSource,
		req.ContractAmount, req.Description, req.StartDate, req.EndDate)
	if err := execExpectOne(tag, err, "update project %s", id); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, id)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	var tasks int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = $1`, id).Scan(&tasks)
	if err != nil {
		return fmt.Errorf("check project tasks %s: %w", id, err)
	}
	if tasks > 0 {
		return fmt.Errorf("project %s still has %d tasks: %w", id, tasks, domain.ErrIntegrity)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete project %s", id)
}
