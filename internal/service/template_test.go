package service

import (
	"context"
	"errors"
	"testing"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/port/database"
)

func TestTemplateListRejectsUnknownStepType(t *testing.T) {
	svc := NewTemplateService(&mockStore{})
	filter := database.TemplateFilter{StepType: "SIGN_OFF"}
	if _, err := svc.List(context.Background(), domain.PageRequest{}, filter); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, err := svc.ListByType(context.Background(), "SIGN_OFF"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ListByType err = %v, want ErrValidation", err)
	}
}

func TestTemplateListActiveOnly(t *testing.T) {
	store := &mockStore{templates: []review.StepTemplate{
		{ID: "tpl-1", Name: "Initial review", StepType: review.StepInitialReview, IsActive: true},
		{ID: "tpl-2", Name: "Retired step", StepType: review.StepInitialReview},
	}}
	svc := NewTemplateService(store)

	page, err := svc.List(context.Background(), domain.PageRequest{},
		database.TemplateFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.List[0].ID != "tpl-1" {
		t.Errorf("list = %+v, want only tpl-1", page.List)
	}
}

func TestTemplateCreateWithRoles(t *testing.T) {
	store := &mockStore{}
	svc := NewTemplateService(store)

	created, err := svc.Create(context.Background(), &review.CreateTemplateRequest{
		Name:            "Initial review",
		Code:            "INIT",
		StepType:        review.StepInitialReview,
		RoleCategoryIDs: []string{"rc-1", "rc-2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.Roles) != 2 {
		t.Fatalf("roles = %d, want 2", len(created.Roles))
	}
}

func TestTemplateBatchAssignSkipsDuplicates(t *testing.T) {
	store := &mockStore{}
	svc := NewTemplateService(store)

	created, err := svc.Create(context.Background(), &review.CreateTemplateRequest{
		Name:            "Cost review",
		Code:            "COST",
		StepType:        review.StepCostReview,
		RoleCategoryIDs: []string{"rc-1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := svc.BatchAssignRoles(context.Background(), created.ID, &review.BatchAssignRolesRequest{
		RoleCategoryIDs: []string{"rc-1", "rc-2", "rc-3"},
	})
	if err != nil {
		t.Fatalf("BatchAssignRoles: %v", err)
	}
	if res.Created != 2 || res.Skipped != 1 {
		t.Fatalf("result = %+v, want created 2 skipped 1", res)
	}
}

func TestTemplateRemoveRole(t *testing.T) {
	store := &mockStore{}
	svc := NewTemplateService(store)

	created, err := svc.Create(context.Background(), &review.CreateTemplateRequest{
		Name:            "Final approval",
		Code:            "FINAL",
		StepType:        review.StepFinalApproval,
		RoleCategoryIDs: []string{"rc-1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.RemoveRole(context.Background(), created.ID, "rc-1"); err != nil {
		t.Fatalf("RemoveRole: %v", err)
	}
	if err := svc.RemoveRole(context.Background(), created.ID, "rc-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second RemoveRole err = %v, want ErrNotFound", err)
	}
}
