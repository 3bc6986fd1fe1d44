package review

import (
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
)

// Configuration is a named, reusable bundle of ordered review steps.
// Task categories bind to it through their reviewConfigId.
type Configuration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
	// IsRelevance reports whether at least one task category is bound.
	IsRelevance bool              `json:"isRelevance"`
	Steps       []Step            `json:"steps"`
	Categories  []CategorySummary `json:"taskCategories"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Step is one ordered entry of a configuration, referencing a step template.
type Step struct {
	ID         string        `json:"id"`
	ConfigID   string        `json:"reviewConfigId"`
	TemplateID string        `json:"reviewStepTemplateId"`
	StepOrder  int           `json:"stepOrder"`
	IsRequired bool          `json:"isRequired"`
	Template   *StepTemplate `json:"reviewStepTemplate,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// CategorySummary is the short projection of a bound task category.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// StepInput describes one step when creating or replacing a
// configuration's step list.
type StepInput struct {
	TemplateID string `json:"reviewStepTemplateId"`
	StepOrder  int    `json:"stepOrder"`
	IsRequired *bool  `json:"isRequired,omitempty"`
}

// Required returns the effective isRequired value, defaulting to true.
func (s *StepInput) Required() bool {
	return s.IsRequired == nil || *s.IsRequired
}

func validateStepInputs(steps []StepInput) error {
	for i, s := range steps {
		if s.TemplateID == "" {
			return fmt.Errorf("steps[%d]: reviewStepTemplateId is required: %w", i, domain.ErrValidation)
		}
		if s.StepOrder < 1 {
			return fmt.Errorf("steps[%d]: stepOrder must be >= 1: %w", i, domain.ErrValidation)
		}
	}
	return nil
}

// CreateConfigRequest holds the fields for creating a configuration.
type CreateConfigRequest struct {
	Name            string      `json:"name"`
	Code            string      `json:"code"`
	Description     string      `json:"description,omitempty"`
	IsActive        *bool       `json:"isActive,omitempty"`
	Steps           []StepInput `json:"steps,omitempty"`
	TaskCategoryIDs []string    `json:"taskCategoryIds,omitempty"`
}

// Validate checks the create request before any store access.
func (r *CreateConfigRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if r.Code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrValidation)
	}
	for _, id := range r.TaskCategoryIDs {
		if id == "" {
			return fmt.Errorf("taskCategoryIds must not contain empty ids: %w", domain.ErrValidation)
		}
	}
	return validateStepInputs(r.Steps)
}

// UpdateConfigRequest holds partial updates for a configuration.
// TaskCategoryIDs present (even empty) rebinds the category set to exactly
// the given list; nil leaves bindings untouched.
type UpdateConfigRequest struct {
	Name            *string   `json:"name,omitempty"`
	Code            *string   `json:"code,omitempty"`
	Description     *string   `json:"description,omitempty"`
	IsActive        *bool     `json:"isActive,omitempty"`
	TaskCategoryIDs *[]string `json:"taskCategoryIds,omitempty"`
}

// Validate checks the update request before any store access.
func (r *UpdateConfigRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.Code != nil && *r.Code == "" {
		return fmt.Errorf("code cannot be empty: %w", domain.ErrValidation)
	}
	if r.TaskCategoryIDs != nil {
		for _, id := range *r.TaskCategoryIDs {
			if id == "" {
				return fmt.Errorf("taskCategoryIds must not contain empty ids: %w", domain.ErrValidation)
			}
		}
	}
	return nil
}

// SetStepsRequest replaces a configuration's whole step list.
// An empty list clears all steps.
type SetStepsRequest struct {
	Steps []StepInput `json:"steps"`
}

// Validate checks the set-steps request before any store access.
func (r *SetStepsRequest) Validate() error {
	return validateStepInputs(r.Steps)
}

// ResolvedStep is one entry of the task-category resolution: an active step
// template together with its first bound role and the users currently
// eligible to perform it.
type ResolvedStep struct {
	StepTemplateID    string     `json:"stepTemplateId"`
	StepName          string     `json:"stepName"`
	StepOrder         int        `json:"stepOrder"`
	IsRequired        bool       `json:"isRequired"`
	RoleID            string     `json:"roleId"`
	RoleName          string     `json:"roleName"`
	EligibleReviewers []Reviewer `json:"reviewPersonnel"`
}

// Reviewer is the short user projection surfaced in resolution results.
type Reviewer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// ResolvedConfiguration is the task-creation view of a configuration: the
// ordered steps with, per step, the reviewers eligible to be assigned.
type ResolvedConfiguration struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Code     string         `json:"code"`
	IsActive bool           `json:"isActive"`
	Steps    []ResolvedStep `json:"steps"`
}
