// Package project defines the Project domain entity.
package project

import (
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
)

// Project represents a construction project that tasks belong to.
type Project struct {
	ID             string     `json:"id"`
	ProjectName    string     `json:"projectName"`
	ProjectType    string     `json:"projectType,omitempty"`
	ClientUnit     string     `json:"clientUnit,omitempty"`
	ProjectSource  string     `json:"projectSource,omitempty"`
	ContractAmount float64    `json:"contractAmount"`
	Description    string     `json:"description,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	CreatorID      string     `json:"creatorId,omitempty"`
	CreatorName    string     `json:"creatorName,omitempty"`
	TaskCount      int        `json:"taskCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CreateRequest holds the fields needed to create a new project.
type CreateRequest struct {
	ProjectName    string     `json:"projectName"`
	ProjectType    string     `json:"projectType"`
	ClientUnit     string     `json:"clientUnit"`
	ProjectSource  string     `json:"projectSource"`
	ContractAmount float64    `json:"contractAmount"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	CreatorID      string     `json:"creatorId"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.ProjectName == "" {
		return fmt.Errorf("projectName is required: %w", domain.ErrValidation)
	}
	if r.ContractAmount < 0 {
		return fmt.Errorf("contractAmount cannot be negative: %w", domain.ErrValidation)
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return fmt.Errorf("endDate precedes startDate: %w", domain.ErrValidation)
	}
	return nil
}

// UpdateRequest holds the mutable project fields; nil fields are untouched.
type UpdateRequest struct {
	ProjectName    *string    `json:"projectName"`
	ProjectType    *string    `json:"projectType"`
	ClientUnit     *string    `json:"clientUnit"`
	ProjectSource  *string    `json:"projectSource"`
	ContractAmount *float64   `json:"contractAmount"`
	Description    *string    `json:"description"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
}

// Validate rejects fields that are present but invalid.
func (r *UpdateRequest) Validate() error {
	if r.ProjectName != nil && *r.ProjectName == "" {
		return fmt.Errorf("projectName cannot be empty: %w", domain.ErrValidation)
	}
	if r.ContractAmount != nil && *r.ContractAmount < 0 {
		return fmt.Errorf("contractAmount cannot be negative: %w", domain.ErrValidation)
	}
	return nil
}
