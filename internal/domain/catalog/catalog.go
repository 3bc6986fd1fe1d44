// Package catalog defines the flat reference entities: role categories and
// task categories. Both carry a unique business code.
package catalog

import (
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
)

// RoleCategory groups users eligible to act in certain review roles.
type RoleCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	UserCount   int       `json:"userCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskCategory classifies tasks and may be bound to a default review
// configuration. ReviewConfigID is nil while unbound.
type TaskCategory struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Description    string    `json:"description,omitempty"`
	IsActive       bool      `json:"isActive"`
	ReviewConfigID *string   `json:"reviewConfigId,omitempty"`
	TaskCount      int       `json:"taskCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TaskCategoryOption is the select-list projection of an active task
// category. IsRelevance reports whether a review configuration is bound.
type TaskCategoryOption struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	ReviewConfigID *string `json:"reviewConfigId,omitempty"`
	IsRelevance    bool    `json:"isRelevance"`
}

// CreateRoleCategoryRequest holds the fields for creating a role category.
type CreateRoleCategoryRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// Active resolves the optional flag; new categories default to active.
func (r *CreateRoleCategoryRequest) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

// Validate checks the create request before any store access.
func (r *CreateRoleCategoryRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if r.Code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrValidation)
	}
	return validateCode(r.Code)
}

// UpdateRoleCategoryRequest holds partial updates for a role category.
type UpdateRoleCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Validate checks the update request before any store access.
func (r *UpdateRoleCategoryRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.Code != nil {
		if *r.Code == "" {
			return fmt.Errorf("code cannot be empty: %w", domain.ErrValidation)
		}
		return validateCode(*r.Code)
	}
	return nil
}

// CreateTaskCategoryRequest holds the fields for creating a task category.
type CreateTaskCategoryRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// Active resolves the optional flag; new categories default to active.
func (r *CreateTaskCategoryRequest) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

// Validate checks the create request before any store access.
func (r *CreateTaskCategoryRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if r.Code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrValidation)
	}
	return validateCode(r.Code)
}

// UpdateTaskCategoryRequest holds partial updates for a task category.
type UpdateTaskCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Validate checks the update request before any store access.
func (r *UpdateTaskCategoryRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.Code != nil {
		if *r.Code == "" {
			return fmt.Errorf("code cannot be empty: %w", domain.ErrValidation)
		}
		return validateCode(*r.Code)
	}
	return nil
}

const maxCodeLength = 64

func validateCode(code string) error {
	if len(code) > maxCodeLength {
		return fmt.Errorf("code exceeds %d characters: %w", maxCodeLength, domain.ErrValidation)
	}
	for _, r := range code {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("code contains control characters: %w", domain.ErrValidation)
		}
	}
	return nil
}
