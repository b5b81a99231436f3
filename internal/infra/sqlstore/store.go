// Package sqlstore provides a SQLite-backed implementation of TaskRepository.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/hfujita/taskpilot/internal/domain"
)

// Ensure Store implements the persistence ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	deadline    TIMESTAMP,
	status      TEXT NOT NULL DEFAULT 'upcoming',
	priority    TEXT NOT NULL DEFAULT 'low',
	completed   BOOLEAN NOT NULL DEFAULT 0,
	parent_id   INTEGER REFERENCES tasks(id) ON DELETE CASCADE,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS task_tags (
	task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (task_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
`

// sortColumns whitelists ORDER BY targets. Mirrors domain.ParseOrdering;
// the store never interpolates caller input into SQL.
var sortColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"deadline":   true,
	"status":     true,
	"priority":   true,
	"completed":  true,
	"created_at": true,
	"updated_at": true,
}

const taskColumns = "id, title, description, deadline, status, priority, completed, parent_id, created_at, updated_at"

// Store implements domain.TaskRepository using a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path.
// Foreign keys are enabled so deletions cascade to sub-tasks and
// tag associations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the schema if it doesn't exist.
func (s *Store) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get retrieves a task by ID. Returns nil if not found.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}

	tags, err := s.loadTags(ctx, []int64{task.ID})
	if err != nil {
		return nil, err
	}
	task.Tags = tags[task.ID]
	return task, nil
}

// List retrieves tasks matching the filter.
func (s *Store) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var conds []string
	var args []any

	if filter.TopLevelOnly {
		conds = append(conds, "parent_id IS NULL")
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Tag != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM task_tags tt JOIN tags tg ON tg.id = tt.tag_id WHERE tt.task_id = tasks.id AND tg.name = ?)")
		args = append(args, filter.Tag)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	orderBy := "id"
	if filter.OrderBy != "" {
		if !sortColumns[filter.OrderBy] {
			return nil, domain.ErrInvalidOrdering
		}
		orderBy = filter.OrderBy
	}
	query += " ORDER BY " + orderBy
	if filter.Descending {
		query += " DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	var ids []int64
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	tags, err := s.loadTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		task.Tags = tags[task.ID]
	}
	return tasks, nil
}

// Create persists the given tasks within a single transaction. Tag
// names are resolved to existing rows or inserted on first use; IDs
// are assigned to tasks and tags on success.
func (s *Store) Create(ctx context.Context, tasks ...*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, task := range tasks {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (title, description, deadline, status, priority, completed, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			task.Title, task.Description, nullableTime(task.Deadline),
			string(task.Status), string(task.Priority), task.Completed,
			nullableID(task.ParentID), task.CreatedAt, task.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		task.ID = id

		for i := range task.Tags {
			name := domain.NormalizeTagName(task.Tags[i].Name)
			tagID, err := lookupOrCreateTag(ctx, tx, name)
			if err != nil {
				return err
			}
			task.Tags[i].ID = tagID
			task.Tags[i].Name = name
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)", id, tagID); err != nil {
				return fmt.Errorf("associate tag: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Update persists changes to an existing task's own fields.
func (s *Store) Update(ctx context.Context, task *domain.Task) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, deadline = ?, status = ?, priority = ?, completed = ?, updated_at = ? WHERE id = ?",
		task.Title, task.Description, nullableTime(task.Deadline),
		string(task.Status), string(task.Priority), task.Completed,
		task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// RefreshStatuses writes recomputed statuses in a single transaction.
// updated_at is deliberately left alone: this is a derived view
// catching up with the clock, not a caller mutation.
func (s *Store) RefreshStatuses(ctx context.Context, updates map[int64]domain.Status) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for id, status := range updates {
		if _, err := tx.ExecContext(ctx, "UPDATE tasks SET status = ? WHERE id = ?", string(status), id); err != nil {
			return fmt.Errorf("refresh status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes a task. Foreign keys cascade the delete to sub-tasks
// and tag associations; tag rows stay behind.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// lookupOrCreateTag resolves a normalized tag name to its row ID,
// inserting the row on first use.
func lookupOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup tag: %w", err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("tag id: %w", err)
	}
	return id, nil
}

// loadTags fetches tag sets for the given task IDs in one query.
func (s *Store) loadTags(ctx context.Context, taskIDs []int64) (map[int64][]domain.Tag, error) {
	result := make(map[int64][]domain.Tag, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(taskIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT tt.task_id, tg.id, tg.name FROM task_tags tt JOIN tags tg ON tg.id = tt.tag_id WHERE tt.task_id IN ("+placeholders+") ORDER BY tg.name",
		args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID int64
		var tag domain.Tag
		if err := rows.Scan(&taskID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		result[taskID] = append(result[taskID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return result, nil
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var deadline sql.NullTime
	var parentID sql.NullInt64
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &deadline,
		&task.Status, &task.Priority, &task.Completed, &parentID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		d := deadline.Time
		task.Deadline = &d
	}
	if parentID.Valid {
		p := parentID.Int64
		task.ParentID = &p
	}
	return &task, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
