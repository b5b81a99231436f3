// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// Task represents a unit of work tracked by taskpilot.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt   time.Time  `json:"created_at"`  // Creation time, immutable
	UpdatedAt   time.Time  `json:"updated_at"`  // Refreshed on every mutation
	Deadline    *time.Time `json:"deadline"`    // Optional deadline (nil = none)
	ParentID    *int64     `json:"parent_id"`   // Parent task ID (nil = top-level)
	Title       string     `json:"title"`       // Title (required)
	Description string     `json:"description"` // Description (optional)
	Status      Status     `json:"status"`      // Derived from (completed, deadline, now)
	Priority    Priority   `json:"priority"`    // Assigned by the classifier at creation
	Tags        []Tag      `json:"tags"`        // Attached tags (many-to-many)
	ID          int64      `json:"id"`          // Task ID (assigned by the store)
	Completed   bool       `json:"completed"`   // Completion flag
}

// IsSubtask returns true if this task has a parent reference.
func (t *Task) IsSubtask() bool {
	return t.ParentID != nil
}

// TagNames returns the names of the task's tags.
func (t *Task) TagNames() []string {
	if len(t.Tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// HasTag reports whether the task carries a tag with the given name.
// Comparison is exact, against the stored (normalized) name.
func (t *Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// Tag is a shared, named label attachable to many tasks.
// Names are unique and stored case-normalized.
type Tag struct {
	Name string `json:"name"` // Normalized name, unique
	ID   int64  `json:"id"`   // Tag ID (assigned by the store)
}

// NormalizeTagName lower-cases and trims a tag name for storage and lookup.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
