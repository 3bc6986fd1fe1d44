package postgres

import (
	"context"
	"fmt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/user"
	"github.com/buildcost/buildcost/internal/port/database"
)

// --- Users ---

const userCols = `u.id, u.username, u.name, u.phone, u.email, u.password_hash,
	u.role, u.role_category_id, u.is_active, u.created_at, u.updated_at`

func scanUser(row scannable) (user.User, error) {
	var u user.User
	var roleCategoryID *string
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Phone, &u.Email, &u.PasswordHash,
		&u.Role, &roleCategoryID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, fmt.Errorf("scan user: %w", err)
	}
	if roleCategoryID != nil {
		u.RoleCategoryID = *roleCategoryID
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, page domain.PageRequest, filter database.UserFilter) (*domain.Page[user.User], error) {
	page.Normalize()
	kw := likePattern(page.Keyword)

	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users u
		 WHERE ($1 = '' OR u.name ILIKE $2 OR u.username ILIKE $2)
		   AND ($3 = '' OR u.role = $3)
		   AND ($4 = '' OR u.role_category_id = $4::uuid)
		   AND (NOT $5 OR u.is_active)`,
		page.Keyword, kw, string(filter.Role), filter.RoleCategoryID, filter.ActiveOnly).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+`
		 FROM users u
		 WHERE ($1 = '' OR u.name ILIKE $2 OR u.username ILIKE $2)
		   AND ($3 = '' OR u.role = $3)
		   AND ($4 = '' OR u.role_category_id = $4::uuid)
		   AND (NOT $5 OR u.is_active)
		 ORDER BY u.created_at DESC
		 LIMIT $6 OFFSET $7`,
		page.Keyword, kw, string(filter.Role), filter.RoleCategoryID, filter.ActiveOnly,
		page.PageSize, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return domain.NewPage(users, total, page), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users u WHERE u.id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users u WHERE u.username = $1`, username)

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user by username %s", username)
	}
	return &u, nil
}

// FindUserByRole returns the oldest user holding the given role, used to
// locate the seeded administrator without a hard-coded account.
func (s *Store) FindUserByRole(ctx context.Context, role user.Role) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users u
		 WHERE u.role = $1 AND u.is_active
		 ORDER BY u.created_at ASC LIMIT 1`, string(role))

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "find user by role %s", role)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, req user.CreateRequest, passwordHash string) (*user.User, error) {
	role := req.Role
	if role == "" {
		role = user.RoleMember
	}
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, name, phone, email, password_hash, role, role_category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		req.Username, req.Name, req.Phone, req.Email, passwordHash,
		string(role), nullIfEmpty(req.RoleCategoryID)).Scan(&id)
	if err != nil {
		return nil, constraintWrap(err, "create user %s", req.Username)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	var role *string
	if req.Role != nil {
		r := string(*req.Role)
		role = &r
	}
	// RoleCategoryID set to "" clears membership, any other value rebinds.
	setRoleCategory := req.RoleCategoryID != nil
	var roleCategory *string
	if setRoleCategory {
		roleCategory = nullIfEmpty(*req.RoleCategoryID)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			email = COALESCE($4, email),
			role = COALESCE($5, role),
			role_category_id = CASE WHEN $6 THEN $7::uuid ELSE role_category_id END,
			is_active = COALESCE($8, is_active),
			updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Phone, req.Email, role, setRoleCategory, roleCategory, req.IsActive)
	if err := execExpectOne(tag, err, "update user %s", id); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	return execExpectOne(tag, err, "update user password %s", id)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete user %s", id)
}
