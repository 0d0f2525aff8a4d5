package domain

import (
	"context"
	"time"
)

// Task is a user-owned note with a title, description, and server-assigned
// creation time. ID and CreatedAt are immutable after insert.
type Task struct {
	ID          int64
	UserID      string
	Title       string
	Description string
	CreatedAt   time.Time
}

// TaskRepository defines persistence operations for tasks. Every read and
// write is scoped to the owning user; a mismatched ID/user pair behaves as
// if the task does not exist.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	// ListByUser returns the user's tasks ordered by creation time
	// descending (newest first).
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	GetByID(ctx context.Context, id int64, userID string) (*Task, error)
	// Update rewrites title and description of the task owned by
	// task.UserID. Returns ErrNotFound when no such task exists.
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id int64, userID string) error
}
