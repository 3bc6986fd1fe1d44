package service

import (
	"context"
	"errors"
	"testing"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/project"
	"github.com/buildcost/buildcost/internal/domain/user"
)

func TestProjectCreateValidation(t *testing.T) {
	svc := NewProjectService(&mockStore{})
	if _, err := svc.Create(context.Background(), &project.CreateRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestProjectCreateUnknownCreator(t *testing.T) {
	svc := NewProjectService(&mockStore{})
	req := &project.CreateRequest{ProjectName: "Bridge retrofit", CreatorID: "nobody"}
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProjectCreateWithCreator(t *testing.T) {
	store := &mockStore{users: []user.User{{ID: "user-1", Username: "ana"}}}
	svc := NewProjectService(store)

	created, err := svc.Create(context.Background(), &project.CreateRequest{
		ProjectName: "Bridge retrofit",
		CreatorID:   "user-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("created project must carry an id")
	}
}
