package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hfujita/taskpilot/internal/domain"
)

// GenerateSubtasksInput contains the parameters for sub-task generation.
type GenerateSubtasksInput struct {
	TaskID int64 // Parent task ID
}

// GenerateSubtasksOutput contains the generated sub-tasks.
type GenerateSubtasksOutput struct {
	Tasks []*domain.Task
}

// GenerateSubtasks is the use case for breaking a task down into
// sub-tasks. The classifier proposes the titles; each child inherits
// the parent's deadline and full tag set, starts at priority low and
// is linked via the parent reference. All children are persisted in a
// single transaction, or none are.
type GenerateSubtasks struct {
	tasks      domain.TaskRepository
	classifier domain.Classifier
	clock      domain.Clock
	logger     *slog.Logger
}

// NewGenerateSubtasks creates a new GenerateSubtasks use case.
func NewGenerateSubtasks(tasks domain.TaskRepository, classifier domain.Classifier, clock domain.Clock, logger *slog.Logger) *GenerateSubtasks {
	return &GenerateSubtasks{
		tasks:      tasks,
		classifier: classifier,
		clock:      clock,
		logger:     logger,
	}
}

// Execute generates sub-tasks for the task with the given ID.
func (uc *GenerateSubtasks) Execute(ctx context.Context, in GenerateSubtasksInput) (*GenerateSubtasksOutput, error) {
	parent, err := uc.tasks.Get(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if parent == nil {
		return nil, domain.ErrTaskNotFound
	}

	breakdown := uc.classifier.Decompose(ctx, parent.Title, parent.Description)
	if breakdown.Defaulted && uc.logger != nil {
		uc.logger.Warn("decomposition defaulted", "id", parent.ID, "reason", breakdown.Reason)
	}
	if len(breakdown.Value) == 0 {
		return &GenerateSubtasksOutput{Tasks: []*domain.Task{}}, nil
	}

	now := uc.clock.Now()
	children := make([]*domain.Task, 0, len(breakdown.Value))
	for _, title := range breakdown.Value {
		parentID := parent.ID
		children = append(children, &domain.Task{
			Title:     title,
			Deadline:  parent.Deadline,
			ParentID:  &parentID,
			Priority:  domain.PriorityLow,
			Status:    domain.DeriveStatus(false, parent.Deadline, now),
			Tags:      append([]domain.Tag(nil), parent.Tags...),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := uc.tasks.Create(ctx, children...); err != nil {
		return nil, fmt.Errorf("save subtasks: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info("subtasks generated", "id", parent.ID, "count", len(children))
	}

	return &GenerateSubtasksOutput{Tasks: children}, nil
}
