// Package review defines the review workflow domain: reusable step
// templates, named step configurations, and the per-task materialized
// review with its ordered stages.
package review

import (
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
)

// StepType identifies the kind of review action a template performs.
type StepType string

const (
	StepInitialReview   StepType = "INITIAL_REVIEW"
	StepTechnicalReview StepType = "TECHNICAL_REVIEW"
	StepCostReview      StepType = "COST_REVIEW"
	StepFinalApproval   StepType = "FINAL_APPROVAL"
)

// ValidStepTypes is the set of recognized step types.
var ValidStepTypes = map[StepType]bool{
	StepInitialReview:   true,
	StepTechnicalReview: true,
	StepCostReview:      true,
	StepFinalApproval:   true,
}

// StepTemplate is a reusable definition of one review action, bound to the
// role categories eligible to perform it.
type StepTemplate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	StepType    StepType      `json:"stepType"`
	Description string        `json:"description,omitempty"`
	IsActive    bool          `json:"isActive"`
	Roles       []RoleBinding `json:"roles"`
	// StepRefCount is the number of configuration steps referencing this
	// template; the template cannot be deleted while it is non-zero.
	StepRefCount int       `json:"stepRefCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RoleBinding links a step template to one eligible role category.
type RoleBinding struct {
	ID             string    `json:"id"`
	RoleCategoryID string    `json:"roleCategoryId"`
	RoleName       string    `json:"roleName"`
	RoleCode       string    `json:"roleCode"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateTemplateRequest holds the fields for creating a step template.
type CreateTemplateRequest struct {
	Name            string   `json:"name"`
	Code            string   `json:"code"`
	StepType        StepType `json:"stepType"`
	Description     string   `json:"description,omitempty"`
	RoleCategoryIDs []string `json:"roleCategoryIds,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// Validate checks the create request before any store access.
func (r *CreateTemplateRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if r.Code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrValidation)
	}
	if !ValidStepTypes[r.StepType] {
		return fmt.Errorf("unknown step type %q: %w", r.StepType, domain.ErrValidation)
	}
	for _, id := range r.RoleCategoryIDs {
		if id == "" {
			return fmt.Errorf("roleCategoryIds must not contain empty ids: %w", domain.ErrValidation)
		}
	}
	return nil
}

// UpdateTemplateRequest holds partial updates for a step template.
// RoleCategoryIDs distinguishes "absent" (nil, bindings untouched) from
// "present and empty" (all bindings cleared).
type UpdateTemplateRequest struct {
	Name            *string   `json:"name,omitempty"`
	Code            *string   `json:"code,omitempty"`
	StepType        *StepType `json:"stepType,omitempty"`
	Description     *string   `json:"description,omitempty"`
	IsActive        *bool     `json:"isActive,omitempty"`
	RoleCategoryIDs *[]string `json:"roleCategoryIds,omitempty"`
}

// Validate checks the update request before any store access.
func (r *UpdateTemplateRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.Code != nil && *r.Code == "" {
		return fmt.Errorf("code cannot be empty: %w", domain.ErrValidation)
	}
	if r.StepType != nil && !ValidStepTypes[*r.StepType] {
		return fmt.Errorf("unknown step type %q: %w", *r.StepType, domain.ErrValidation)
	}
	if r.RoleCategoryIDs != nil {
		for _, id := range *r.RoleCategoryIDs {
			if id == "" {
				return fmt.Errorf("roleCategoryIds must not contain empty ids: %w", domain.ErrValidation)
			}
		}
	}
	return nil
}

// AssignRoleRequest binds one role category to a step template.
type AssignRoleRequest struct {
	RoleCategoryID string `json:"roleCategoryId"`
}

// Validate checks the assign request before any store access.
func (r *AssignRoleRequest) Validate() error {
	if r.RoleCategoryID == "" {
		return fmt.Errorf("roleCategoryId is required: %w", domain.ErrValidation)
	}
	return nil
}

// BatchAssignRolesRequest binds several role categories at once.
type BatchAssignRolesRequest struct {
	RoleCategoryIDs []string `json:"roleCategoryIds"`
}

// Validate checks the batch assign request before any store access.
func (r *BatchAssignRolesRequest) Validate() error {
	if len(r.RoleCategoryIDs) == 0 {
		return fmt.Errorf("roleCategoryIds is required: %w", domain.ErrValidation)
	}
	for _, id := range r.RoleCategoryIDs {
		if id == "" {
			return fmt.Errorf("roleCategoryIds must not contain empty ids: %w", domain.ErrValidation)
		}
	}
	return nil
}

// BatchAssignResult reports how many bindings were created and how many
// were skipped because they already existed.
type BatchAssignResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
