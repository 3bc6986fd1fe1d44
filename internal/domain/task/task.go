// Package task defines the cost-management Task entity and its review inputs.
package task

import (
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
)

// Task represents a unit of cost-management work inside a project.
type Task struct {
	ID               string             `json:"id"`
	TaskName         string             `json:"taskName"`
	ProjectID        string             `json:"projectId"`
	TaskCategoryID   string             `json:"taskCategoryId"`
	TaskLeaderID     string             `json:"taskLeaderId"`
	Description      string             `json:"description,omitempty"`
	IsReviewRequired bool               `json:"isReviewRequired"`
	Attachments      []string           `json:"attachments,omitempty"`
	ParticipantIDs   []string           `json:"participantIds,omitempty"`
	IsDeleted        bool               `json:"isDeleted"`
	DeletedAt        *time.Time         `json:"deletedAt,omitempty"`
	DeletedBy        string             `json:"deletedBy,omitempty"`
	Review           *review.TaskReview `json:"taskReviewConfig,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// CreateRequest holds the fields needed to create a task together with its
// materialized review. Stage assignments are required exactly when the task
// is review-required.
type CreateRequest struct {
	TaskName         string                   `json:"taskName"`
	ProjectID        string                   `json:"projectId"`
	TaskCategoryID   string                   `json:"taskCategoryId"`
	TaskLeaderID     string                   `json:"taskLeaderId"`
	Description      string                   `json:"description"`
	IsReviewRequired *bool                    `json:"isReviewRequired"`
	Attachments      []string                 `json:"attachments"`
	ParticipantIDs   []string                 `json:"participantIds"`
	ReviewConfigID   string                   `json:"reviewConfigId"`
	Stages           []review.StageAssignment `json:"stages"`
}

// ReviewRequired resolves the optional flag; reviews default to on.
func (r *CreateRequest) ReviewRequired() bool {
	return r.IsReviewRequired == nil || *r.IsReviewRequired
}

// Validate checks structural rules before any store access.
func (r *CreateRequest) Validate() error {
	if r.TaskName == "" {
		return fmt.Errorf("taskName is required: %w", domain.ErrValidation)
	}
	if r.ProjectID == "" {
		return fmt.Errorf("projectId is required: %w", domain.ErrValidation)
	}
	if r.TaskCategoryID == "" {
		return fmt.Errorf("taskCategoryId is required: %w", domain.ErrValidation)
	}
	if r.TaskLeaderID == "" {
		return fmt.Errorf("taskLeaderId is required: %w", domain.ErrValidation)
	}
	if !r.ReviewRequired() {
		return nil
	}
	if len(r.Stages) == 0 {
		return fmt.Errorf("at least one stage is required for reviewed tasks: %w", domain.ErrValidation)
	}
	for i := range r.Stages {
		if err := r.Stages[i].Validate(); err != nil {
			return fmt.Errorf("stage %d: %w", i+1, err)
		}
	}
	return nil
}

// UpdateRequest holds the mutable task fields. Review wiring is immutable
// after creation; nil fields are left untouched.
type UpdateRequest struct {
	TaskName       *string   `json:"taskName"`
	TaskLeaderID   *string   `json:"taskLeaderId"`
	Description    *string   `json:"description"`
	Attachments    *[]string `json:"attachments"`
	ParticipantIDs *[]string `json:"participantIds"`
}

// Validate rejects fields that are present but empty.
func (r *UpdateRequest) Validate() error {
	if r.TaskName != nil && *r.TaskName == "" {
		return fmt.Errorf("taskName cannot be empty: %w", domain.ErrValidation)
	}
	if r.TaskLeaderID != nil && *r.TaskLeaderID == "" {
		return fmt.Errorf("taskLeaderId cannot be empty: %w", domain.ErrValidation)
	}
	return nil
}
