// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hfujita/taskpilot/internal/domain"
)

// CreateTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	Deadline    *time.Time // Optional deadline
	ParentID    *int64     // Optional parent task ID
	Title       string     // Task title (required)
	Description string     // Task description (optional)
}

// CreateTaskOutput contains the result of creating a new task.
type CreateTaskOutput struct {
	Task *domain.Task // The created task, with classifier-assigned fields
}

// CreateTask is the use case for creating a new task. Creation asks the
// classifier for a priority and a tag set; either call may come back
// defaulted without aborting the creation.
type CreateTask struct {
	tasks      domain.TaskRepository
	classifier domain.Classifier
	clock      domain.Clock
	logger     *slog.Logger
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(tasks domain.TaskRepository, classifier domain.Classifier, clock domain.Clock, logger *slog.Logger) *CreateTask {
	return &CreateTask{
		tasks:      tasks,
		classifier: classifier,
		clock:      clock,
		logger:     logger,
	}
}

// Execute creates a new task with the given input.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (*CreateTaskOutput, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}

	if in.ParentID != nil {
		parent, err := uc.tasks.Get(ctx, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("get parent task: %w", err)
		}
		if parent == nil {
			return nil, domain.ErrParentNotFound
		}
	}

	priority := uc.classifier.ClassifyPriority(ctx, in.Title, in.Description)
	if priority.Defaulted && uc.logger != nil {
		uc.logger.Warn("priority classification defaulted", "title", in.Title, "reason", priority.Reason)
	}

	tags := uc.classifier.ClassifyTags(ctx, in.Title, in.Description)
	if tags.Defaulted && uc.logger != nil {
		uc.logger.Warn("tag classification defaulted", "title", in.Title, "reason", tags.Reason)
	}

	now := uc.clock.Now()
	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		ParentID:    in.ParentID,
		Priority:    priority.Value,
		Status:      domain.DeriveStatus(false, in.Deadline, now),
		Tags:        tagsFromNames(tags.Value),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info("task created", "id", task.ID, "priority", task.Priority, "tags", task.TagNames())
	}

	return &CreateTaskOutput{Task: task}, nil
}

// tagsFromNames builds unsaved tag values from classifier names.
// The store resolves them to existing or new rows on create.
func tagsFromNames(names []string) []domain.Tag {
	if len(names) == 0 {
		return nil
	}
	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, domain.Tag{Name: domain.NormalizeTagName(name)})
	}
	return tags
}
