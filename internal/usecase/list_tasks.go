package usecase

import (
	"context"
	"fmt"

	"github.com/hfujita/taskpilot/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks. Filter
// values arrive as raw strings from the caller and are validated here.
type ListTasksInput struct {
	Status          string // Filter by status ("" = all)
	Priority        string // Filter by priority ("" = all)
	Tag             string // Filter by exact stored tag name ("" = all)
	Ordering        string // Sort expression, e.g. "-created_at" ("" = store order)
	IncludeSubtasks bool   // Include tasks that have a parent reference
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task
}

// ListTasks is the use case for listing tasks. Before filtering, every
// stored task's status is recomputed against the clock and stale rows
// are rewritten (lazy re-evaluation on read). The refresh is a derived
// view catching up with the clock, so updated_at is left alone.
type ListTasks struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, clock domain.Clock) *ListTasks {
	return &ListTasks{
		tasks: tasks,
		clock: clock,
	}
}

// Execute lists tasks matching the given input criteria.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	filter := domain.TaskFilter{
		Tag:          in.Tag,
		TopLevelOnly: !in.IncludeSubtasks,
	}

	if in.Status != "" {
		status, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	if in.Priority != "" {
		priority, err := domain.ParsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &priority
	}

	key, descending, err := domain.ParseOrdering(in.Ordering)
	if err != nil {
		return nil, err
	}
	filter.OrderBy = key
	filter.Descending = descending

	if err := uc.refreshStatuses(ctx); err != nil {
		return nil, err
	}

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &ListTasksOutput{Tasks: tasks}, nil
}

// refreshStatuses recomputes the status of every stored task and
// persists the ones whose deadline has newly passed.
func (uc *ListTasks) refreshStatuses(ctx context.Context) error {
	all, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return fmt.Errorf("list tasks for refresh: %w", err)
	}

	now := uc.clock.Now()
	updates := make(map[int64]domain.Status)
	for _, task := range all {
		if status := domain.DeriveStatus(task.Completed, task.Deadline, now); status != task.Status {
			updates[task.ID] = status
		}
	}

	if len(updates) == 0 {
		return nil
	}
	if err := uc.tasks.RefreshStatuses(ctx, updates); err != nil {
		return fmt.Errorf("refresh statuses: %w", err)
	}
	return nil
}
