package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/hfujita/taskpilot/internal/domain"
)

// mockClock is a test double for domain.Clock.
type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time {
	return m.now
}

// mockClassifier is a test double for domain.Classifier returning
// canned results and counting calls.
type mockClassifier struct {
	priority       domain.Result[domain.Priority]
	tags           domain.Result[[]string]
	breakdown      domain.Result[[]string]
	priorityCalls  int
	tagCalls       int
	decomposeCalls int
}

func newMockClassifier() *mockClassifier {
	return &mockClassifier{
		priority:  domain.Ok(domain.PriorityMedium),
		tags:      domain.Ok[[]string](nil),
		breakdown: domain.Ok[[]string](nil),
	}
}

func (m *mockClassifier) ClassifyPriority(_ context.Context, _, _ string) domain.Result[domain.Priority] {
	m.priorityCalls++
	return m.priority
}

func (m *mockClassifier) ClassifyTags(_ context.Context, _, _ string) domain.Result[[]string] {
	m.tagCalls++
	return m.tags
}

func (m *mockClassifier) Decompose(_ context.Context, _, _ string) domain.Result[[]string] {
	m.decomposeCalls++
	return m.breakdown
}

// mockTaskRepository is an in-memory test double for domain.TaskRepository.
// Fields are ordered to minimize memory padding.
type mockTaskRepository struct {
	tasks      map[int64]*domain.Task
	tagIDs     map[string]int64
	refreshed  map[int64]domain.Status
	createErr  error
	getErr     error
	updateErr  error
	deleteErr  error
	refreshErr error
	listErr    error
	lastFilter domain.TaskFilter
	nextID     int64
	nextTagID  int64
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{
		tasks:     make(map[int64]*domain.Task),
		tagIDs:    make(map[string]int64),
		refreshed: make(map[int64]domain.Status),
		nextID:    1,
		nextTagID: 1,
	}
}

func (m *mockTaskRepository) Get(_ context.Context, id int64) (*domain.Task, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskRepository) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.lastFilter = filter

	var tasks []*domain.Task
	for _, t := range m.tasks {
		if filter.TopLevelOnly && t.IsSubtask() {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Tag != "" && !t.HasTag(filter.Tag) {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}

	key := filter.OrderBy
	if key == "" {
		key = "id"
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		c := compareTasks(a, b, key)
		if filter.Descending {
			return -c
		}
		return c
	})
	return tasks, nil
}

func compareTasks(a, b *domain.Task, key string) int {
	switch key {
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "title":
		return strings.Compare(a.Title, b.Title)
	default:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	}
}

func (m *mockTaskRepository) Create(_ context.Context, tasks ...*domain.Task) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, task := range tasks {
		task.ID = m.nextID
		m.nextID++
		for i, tag := range task.Tags {
			id, ok := m.tagIDs[tag.Name]
			if !ok {
				id = m.nextTagID
				m.nextTagID++
				m.tagIDs[tag.Name] = id
			}
			task.Tags[i].ID = id
		}
		copied := *task
		m.tasks[task.ID] = &copied
	}
	return nil
}

func (m *mockTaskRepository) Update(_ context.Context, task *domain.Task) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepository) RefreshStatuses(_ context.Context, updates map[int64]domain.Status) error {
	if m.refreshErr != nil {
		return m.refreshErr
	}
	for id, status := range updates {
		m.refreshed[id] = status
		if task, ok := m.tasks[id]; ok {
			task.Status = status
		}
	}
	return nil
}

func (m *mockTaskRepository) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.tasks, id)
	for childID, t := range m.tasks {
		if t.ParentID != nil && *t.ParentID == id {
			delete(m.tasks, childID)
		}
	}
	return nil
}
