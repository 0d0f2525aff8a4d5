package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/notesync/notesync/internal/domain"
	"github.com/notesync/notesync/internal/service"
)

func newTestTaskService(t *testing.T) (*service.TaskService, string, string) {
	t.Helper()
	db := newTestDB(t)
	auth := service.NewAuthService(db.Users(), db.Profiles(), db.ResetTokens(), &capturingMailer{}, testJWTSecret, 4, "http://localhost:8080")

	owner, err := auth.SignUp(context.Background(), "Owner", 30, "", "owner@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp owner: %v", err)
	}
	other, err := auth.SignUp(context.Background(), "Other", 30, "", "other@example.com", "password123")
	if err != nil {
		t.Fatalf("SignUp other: %v", err)
	}

	return service.NewTaskService(db.Tasks()), owner.ID, other.ID
}

func TestTaskService_CreateAndList(t *testing.T) {
	tasks, ownerID, _ := newTestTaskService(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		task, err := tasks.Create(ctx, ownerID, fmt.Sprintf("Task %d", i), "desc")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, task.ID)
	}

	// IDs are assigned in strictly increasing order.
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("expected increasing ids, got %v", ids)
		}
	}

	list, err := tasks.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(list))
	}
	// Newest first.
	if list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Fatalf("expected newest-first order, got %v then %v", list[0].ID, list[2].ID)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	tasks, ownerID, _ := newTestTaskService(t)
	ctx := context.Background()

	if _, err := tasks.Create(ctx, ownerID, "", "desc"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty title, got %v", err)
	}
	if _, err := tasks.Create(ctx, ownerID, "  ", "desc"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}
	if _, err := tasks.Create(ctx, ownerID, "title", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty description, got %v", err)
	}
}

func TestTaskService_Update_PreservesIdentity(t *testing.T) {
	tasks, ownerID, _ := newTestTaskService(t)
	ctx := context.Background()

	created, err := tasks.Create(ctx, ownerID, "Before", "old")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := tasks.Update(ctx, ownerID, created.ID, "After", "new")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("update changed id: %d != %d", updated.ID, created.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update changed creation time: %v != %v", updated.CreatedAt, created.CreatedAt)
	}
	if updated.Title != "After" || updated.Description != "new" {
		t.Fatalf("update did not apply: %+v", updated)
	}
}

func TestTaskService_Update_NotOwner(t *testing.T) {
	tasks, ownerID, otherID := newTestTaskService(t)
	ctx := context.Background()

	created, err := tasks.Create(ctx, ownerID, "Mine", "desc")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := tasks.Update(ctx, otherID, created.ID, "Theirs", "desc"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign task, got %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	tasks, ownerID, otherID := newTestTaskService(t)
	ctx := context.Background()

	keep, err := tasks.Create(ctx, ownerID, "Keep", "desc")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	gone, err := tasks.Create(ctx, ownerID, "Gone", "desc")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A different user cannot delete it.
	if err := tasks.Delete(ctx, otherID, gone.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	if err := tasks.Delete(ctx, ownerID, gone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tasks.Delete(ctx, ownerID, gone.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	list, err := tasks.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("expected only the kept task, got %+v", list)
	}
}

func TestTaskService_List_IsolatedPerUser(t *testing.T) {
	tasks, ownerID, otherID := newTestTaskService(t)
	ctx := context.Background()

	if _, err := tasks.Create(ctx, ownerID, "Mine", "desc"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := tasks.List(ctx, otherID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for other user, got %d tasks", len(list))
	}
}
