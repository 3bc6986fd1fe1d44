package review

import (
	"errors"
	"testing"

	"github.com/buildcost/buildcost/internal/domain"
)

func newReview(stages int) *TaskReview {
	tr := &TaskReview{
		ID:               "tr-1",
		TaskID:           "task-1",
		ConfigID:         "cfg-1",
		Status:           WorkflowPending,
		CurrentStepOrder: 1,
	}
	for i := 1; i <= stages; i++ {
		tr.Stages = append(tr.Stages, Stage{
			ID:        "stage-" + string(rune('0'+i)),
			StepOrder: i,
			Status:    StagePending,
		})
	}
	return tr
}

func TestApplyApprovalAdvances(t *testing.T) {
	tr := newReview(3)

	stage, err := tr.ApplyApproval()
	if err != nil {
		t.Fatalf("ApplyApproval: %v", err)
	}
	if stage.StepOrder != 1 || stage.Status != StageApproved {
		t.Fatalf("got stage %d status %s", stage.StepOrder, stage.Status)
	}
	if tr.CurrentStepOrder != 2 {
		t.Fatalf("expected pointer on step 2, got %d", tr.CurrentStepOrder)
	}
	if tr.Status != WorkflowInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", tr.Status)
	}
}

func TestApplyApprovalFinalStage(t *testing.T) {
	tr := newReview(2)

	if _, err := tr.ApplyApproval(); err != nil {
		t.Fatalf("first approval: %v", err)
	}
	stage, err := tr.ApplyApproval()
	if err != nil {
		t.Fatalf("final approval: %v", err)
	}
	if stage.StepOrder != 2 {
		t.Fatalf("expected stage 2, got %d", stage.StepOrder)
	}
	if tr.Status != WorkflowApproved {
		t.Fatalf("expected APPROVED, got %s", tr.Status)
	}
	if tr.CurrentStepOrder != 2 {
		t.Fatalf("pointer should stay on last stage, got %d", tr.CurrentStepOrder)
	}
}

func TestApplyApprovalSingleStage(t *testing.T) {
	tr := newReview(1)

	if _, err := tr.ApplyApproval(); err != nil {
		t.Fatalf("ApplyApproval: %v", err)
	}
	if tr.Status != WorkflowApproved {
		t.Fatalf("expected APPROVED, got %s", tr.Status)
	}
}

func TestApplyRejectionTerminates(t *testing.T) {
	tr := newReview(3)

	if _, err := tr.ApplyApproval(); err != nil {
		t.Fatalf("ApplyApproval: %v", err)
	}
	stage, err := tr.ApplyRejection()
	if err != nil {
		t.Fatalf("ApplyRejection: %v", err)
	}
	if stage.StepOrder != 2 || stage.Status != StageRejected {
		t.Fatalf("got stage %d status %s", stage.StepOrder, stage.Status)
	}
	if tr.Status != WorkflowRejected {
		t.Fatalf("expected REJECTED, got %s", tr.Status)
	}
	if tr.CurrentStepOrder != 2 {
		t.Fatalf("pointer should stay on rejected stage, got %d", tr.CurrentStepOrder)
	}
}

func TestActionOnTerminalReview(t *testing.T) {
	tr := newReview(1)
	if _, err := tr.ApplyApproval(); err != nil {
		t.Fatalf("ApplyApproval: %v", err)
	}

	if _, err := tr.ApplyApproval(); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on approved review, got %v", err)
	}
	if _, err := tr.ApplyRejection(); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on approved review, got %v", err)
	}
}

func TestActionOnDeletedReview(t *testing.T) {
	tr := newReview(2)
	tr.IsDeleted = true

	if _, err := tr.ApplyApproval(); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on deleted review, got %v", err)
	}
}

func TestActionOnNonPendingStage(t *testing.T) {
	tr := newReview(2)
	tr.Stages[0].Status = StageApproved

	if _, err := tr.ApplyApproval(); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on non-pending stage, got %v", err)
	}
}

func TestCurrentStageMissing(t *testing.T) {
	tr := newReview(2)
	tr.CurrentStepOrder = 5

	if tr.CurrentStage() != nil {
		t.Fatal("expected nil stage past end")
	}
	if _, err := tr.ApplyApproval(); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict without current stage, got %v", err)
	}
}

func TestStageAssignmentValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      StageAssignment
		wantErr bool
	}{
		{"valid", StageAssignment{StepTemplateID: "t1", StepName: "tech", ReviewerID: "u1"}, false},
		{"missing template", StageAssignment{StepName: "tech", ReviewerID: "u1"}, true},
		{"missing name", StageAssignment{StepTemplateID: "t1", ReviewerID: "u1"}, true},
		{"missing reviewer", StageAssignment{StepTemplateID: "t1", StepName: "tech"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
