package usecase

import (
	"context"
	"fmt"

	"github.com/hfujita/taskpilot/internal/domain"
)

// GetTaskInput contains the parameters for retrieving a task.
type GetTaskInput struct {
	TaskID int64 // Task ID to retrieve
}

// GetTaskOutput contains the retrieved task.
type GetTaskOutput struct {
	Task *domain.Task
}

// GetTask is the use case for retrieving a single task. The stored
// status is recomputed against the clock on every read; a changed
// status is written back.
type GetTask struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewGetTask creates a new GetTask use case.
func NewGetTask(tasks domain.TaskRepository, clock domain.Clock) *GetTask {
	return &GetTask{
		tasks: tasks,
		clock: clock,
	}
}

// Execute retrieves the task with the given ID.
func (uc *GetTask) Execute(ctx context.Context, in GetTaskInput) (*GetTaskOutput, error) {
	task, err := uc.tasks.Get(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	status := domain.DeriveStatus(task.Completed, task.Deadline, uc.clock.Now())
	if status != task.Status {
		if err := uc.tasks.RefreshStatuses(ctx, map[int64]domain.Status{task.ID: status}); err != nil {
			return nil, fmt.Errorf("refresh status: %w", err)
		}
		task.Status = status
	}

	return &GetTaskOutput{Task: task}, nil
}
