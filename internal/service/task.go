package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/notesync/notesync/internal/domain"
)

// TaskService implements the note list workflow: load, create, update, and
// delete, always scoped to the calling user.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns all of the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Create stores a new task and returns it with the server-assigned ID and
// creation time.
func (s *TaskService) Create(ctx context.Context, userID, title, description string) (*domain.Task, error) {
	if err := validateTaskInput(title, description); err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update rewrites title and description of the user's task. ID and creation
// time are immutable. Returns ErrNotFound for tasks owned by someone else.
func (s *TaskService) Update(ctx context.Context, userID string, id int64, title, description string) (*domain.Task, error) {
	if err := validateTaskInput(title, description); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	// Re-read to return the record with its original creation time.
	return s.tasks.GetByID(ctx, id, userID)
}

// Delete removes the user's task by ID.
func (s *TaskService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func validateTaskInput(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	return nil
}
