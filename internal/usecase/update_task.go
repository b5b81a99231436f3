package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hfujita/taskpilot/internal/domain"
)

// UpdateTaskInput contains the parameters for updating a task.
type UpdateTaskInput struct {
	Patch  domain.TaskPatch // Fields to change; absent fields are untouched
	TaskID int64            // Task ID to update (required)
}

// UpdateTaskOutput contains the result of updating a task.
type UpdateTaskOutput struct {
	Task *domain.Task // The updated task
}

// UpdateTask is the use case for applying a partial update to a task.
// Status is recomputed from the possibly-new completed/deadline values
// and updated_at is refreshed, even for an empty patch.
type UpdateTask struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewUpdateTask creates a new UpdateTask use case.
func NewUpdateTask(tasks domain.TaskRepository, clock domain.Clock) *UpdateTask {
	return &UpdateTask{
		tasks: tasks,
		clock: clock,
	}
}

// Execute updates a task with the given patch.
func (uc *UpdateTask) Execute(ctx context.Context, in UpdateTaskInput) (*UpdateTaskOutput, error) {
	patch := in.Patch

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}

	task, err := uc.tasks.Get(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DeadlineSet {
		task.Deadline = patch.Deadline
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}

	now := uc.clock.Now()
	task.Status = domain.DeriveStatus(task.Completed, task.Deadline, now)
	task.UpdatedAt = now

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	return &UpdateTaskOutput{Task: task}, nil
}
