package usecase

import (
	"context"
	"testing"

	"github.com/hfujita/taskpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteTask_Execute_Success(t *testing.T) {
	repo := newMockTaskRepository()
	repo.tasks[1] = &domain.Task{ID: 1, Title: "Old chore"}
	uc := NewDeleteTask(repo)

	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 1})

	require.NoError(t, err)
	assert.NotContains(t, repo.tasks, int64(1))
}

func TestDeleteTask_Execute_CascadesToSubtasks(t *testing.T) {
	repo := newMockTaskRepository()
	parentID := int64(1)
	repo.tasks[1] = &domain.Task{ID: 1, Title: "Parent"}
	repo.tasks[2] = &domain.Task{ID: 2, Title: "Child", ParentID: &parentID}
	uc := NewDeleteTask(repo)

	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 1})

	require.NoError(t, err)
	assert.Empty(t, repo.tasks)
}

func TestDeleteTask_Execute_NotFound(t *testing.T) {
	uc := NewDeleteTask(newMockTaskRepository())

	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 42})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDeleteTask_Execute_DeleteError(t *testing.T) {
	repo := newMockTaskRepository()
	repo.tasks[1] = &domain.Task{ID: 1, Title: "Sticky"}
	repo.deleteErr = assert.AnError
	uc := NewDeleteTask(repo)

	_, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: 1})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "delete task")
}
