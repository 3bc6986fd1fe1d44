// Package user defines the user domain model for the back office.
package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
)

// Role represents the authorization level of a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ValidRoles is the set of all valid user roles.
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// MinPasswordLength is the shortest password accepted on create and reset.
const MinPasswordLength = 8

// User represents a registered back-office user. A user may belong to at
// most one role category, which makes them eligible as a reviewer for
// review steps bound to that category.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	RoleCategoryID string    `json:"roleCategoryId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateRequest is the input for registering a new user.
type CreateRequest struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Password        string `json:"password"`        //nolint:gosec // request field, not a hardcoded secret
	ConfirmPassword string `json:"confirmPassword"` //nolint:gosec // request field, not a hardcoded secret
	Role            Role   `json:"role"`
	RoleCategoryID  string `json:"roleCategoryId"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required: %w", domain.ErrValidation)
	}
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return fmt.Errorf("invalid email format: %w", domain.ErrValidation)
		}
	}
	if r.Password == "" {
		return fmt.Errorf("password is required: %w", domain.ErrValidation)
	}
	if len(r.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, domain.ErrValidation)
	}
	if r.Password != r.ConfirmPassword {
		return fmt.Errorf("passwords do not match: %w", domain.ErrValidation)
	}
	if r.Role != "" && !ValidRoles[r.Role] {
		return fmt.Errorf("invalid role %q: %w", r.Role, domain.ErrValidation)
	}
	return nil
}

// UpdateRequest is the input for updating an existing user; nil fields are
// left untouched. RoleCategoryID set to the empty string clears membership.
type UpdateRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Role           *Role   `json:"role"`
	RoleCategoryID *string `json:"roleCategoryId"`
	IsActive       *bool   `json:"isActive"`
}

// Validate rejects fields that are present but invalid.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.Email != nil && *r.Email != "" {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			return fmt.Errorf("invalid email format: %w", domain.ErrValidation)
		}
	}
	if r.Role != nil && !ValidRoles[*r.Role] {
		return fmt.Errorf("invalid role %q: %w", *r.Role, domain.ErrValidation)
	}
	return nil
}
