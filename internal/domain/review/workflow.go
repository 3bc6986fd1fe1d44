package review

import (
	"fmt"
	"time"

	"github.com/buildcost/buildcost/internal/domain"
)

// WorkflowStatus is the overall state of a task's materialized review.
type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "PENDING"
	WorkflowInProgress WorkflowStatus = "IN_PROGRESS"
	WorkflowApproved   WorkflowStatus = "APPROVED"
	WorkflowRejected   WorkflowStatus = "REJECTED"
)

// Terminal reports whether no further stage action is possible.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowApproved || s == WorkflowRejected
}

// StageStatus is the state of one review stage. PENDING is the only
// non-terminal state.
type StageStatus string

const (
	StagePending  StageStatus = "PENDING"
	StageApproved StageStatus = "APPROVED"
	StageRejected StageStatus = "REJECTED"
)

// TaskReview is the concrete, per-task materialization of a configuration:
// at most one per task, with one stage per configured step.
type TaskReview struct {
	ID               string         `json:"id"`
	TaskID           string         `json:"taskId"`
	ConfigID         string         `json:"reviewConfigId"`
	Status           WorkflowStatus `json:"status"`
	CurrentStepOrder int            `json:"currentStepOrder"`
	IsDeleted        bool           `json:"isDeleted"`
	DeletedAt        *time.Time     `json:"deletedAt,omitempty"`
	Stages           []Stage        `json:"stages"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Stage is one concrete review step of a task, with an assigned reviewer.
type Stage struct {
	ID             string      `json:"id"`
	TaskReviewID   string      `json:"taskReviewConfigId"`
	StepTemplateID string      `json:"stepConfigId"`
	StepOrder      int         `json:"stepOrder"`
	StepName       string      `json:"stepName"`
	ReviewerID     string      `json:"reviewerId"`
	Status         StageStatus `json:"status"`
	IsDeleted      bool        `json:"isDeleted"`
	DeletedAt      *time.Time  `json:"deletedAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// StageAssignment is the task-creation input for one stage. Stage order is
// taken from the position in the assignment list, never from the caller.
type StageAssignment struct {
	StepTemplateID string `json:"stepTemplateId"`
	StepName       string `json:"stepName"`
	ReviewerID     string `json:"reviewerId"`
}

// Validate checks one stage assignment before any store access.
func (a *StageAssignment) Validate() error {
	if a.StepTemplateID == "" {
		return fmt.Errorf("stepTemplateId is required: %w", domain.ErrValidation)
	}
	if a.StepName == "" {
		return fmt.Errorf("stepName is required: %w", domain.ErrValidation)
	}
	if a.ReviewerID == "" {
		return fmt.Errorf("reviewerId is required: %w", domain.ErrValidation)
	}
	return nil
}

// CurrentStage returns the stage the current-step pointer addresses, or nil
// when the pointer is past the last stage.
func (tr *TaskReview) CurrentStage() *Stage {
	for i := range tr.Stages {
		if tr.Stages[i].StepOrder == tr.CurrentStepOrder {
			return &tr.Stages[i]
		}
	}
	return nil
}

// ApplyApproval approves the current stage and advances the workflow.
// The final stage's approval moves the whole review to APPROVED; any
// earlier approval advances the pointer and marks the review IN_PROGRESS.
// Returns the approved stage.
func (tr *TaskReview) ApplyApproval() (*Stage, error) {
	stage, err := tr.actionableStage()
	if err != nil {
		return nil, err
	}
	stage.Status = StageApproved

	if tr.CurrentStepOrder >= tr.lastStepOrder() {
		tr.Status = WorkflowApproved
	} else {
		tr.CurrentStepOrder++
		tr.Status = WorkflowInProgress
	}
	return stage, nil
}

// ApplyRejection rejects the current stage and terminates the workflow.
// The pointer is left on the rejected stage. Returns the rejected stage.
func (tr *TaskReview) ApplyRejection() (*Stage, error) {
	stage, err := tr.actionableStage()
	if err != nil {
		return nil, err
	}
	stage.Status = StageRejected
	tr.Status = WorkflowRejected
	return stage, nil
}

func (tr *TaskReview) actionableStage() (*Stage, error) {
	if tr.IsDeleted {
		return nil, fmt.Errorf("review is deleted: %w", domain.ErrConflict)
	}
	if tr.Status.Terminal() {
		return nil, fmt.Errorf("review already %s: %w", tr.Status, domain.ErrConflict)
	}
	stage := tr.CurrentStage()
	if stage == nil {
		return nil, fmt.Errorf("no stage at step %d: %w", tr.CurrentStepOrder, domain.ErrConflict)
	}
	if stage.Status != StagePending {
		return nil, fmt.Errorf("stage %d already %s: %w", stage.StepOrder, stage.Status, domain.ErrConflict)
	}
	return stage, nil
}

func (tr *TaskReview) lastStepOrder() int {
	max := 0
	for i := range tr.Stages {
		if tr.Stages[i].StepOrder > max {
			max = tr.Stages[i].StepOrder
		}
	}
	return max
}
