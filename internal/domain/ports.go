package domain

import (
	"context"
	"strings"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the schema if it doesn't exist.
	Initialize(ctx context.Context) error
}

// TaskRepository manages task and tag persistence.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(ctx context.Context, id int64) (*Task, error)

	// List retrieves tasks matching the filter.
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// Create persists the given tasks within a single transaction,
	// resolving tag names to existing or newly created tag rows.
	// IDs are assigned on success. Either all tasks are persisted or none.
	Create(ctx context.Context, tasks ...*Task) error

	// Update persists changes to an existing task's own fields.
	// Tag associations are left unchanged.
	Update(ctx context.Context, task *Task) error

	// RefreshStatuses writes recomputed statuses for the given tasks.
	// This is the lazy re-evaluation path and does not touch updated_at.
	RefreshStatuses(ctx context.Context, updates map[int64]Status) error

	// Delete removes a task together with its tag associations and its
	// sub-tasks. Tag rows are left in place.
	Delete(ctx context.Context, id int64) error
}

// TaskFilter specifies criteria for listing tasks. Filters are
// conjunctive; zero values mean "no constraint".
// Fields are ordered to minimize memory padding.
type TaskFilter struct {
	Status       *Status   // Filter by derived status
	Priority     *Priority // Filter by priority
	Tag          string    // Filter by exact stored tag name
	OrderBy      string    // Sort column (validated via ParseOrdering)
	Descending   bool      // Reverse sort order
	TopLevelOnly bool      // Exclude tasks with a parent reference
}

// sortKeys whitelists the task attributes exposed for ordering.
var sortKeys = map[string]bool{
	"id":         true,
	"title":      true,
	"deadline":   true,
	"status":     true,
	"priority":   true,
	"completed":  true,
	"created_at": true,
	"updated_at": true,
}

// ParseOrdering parses an ordering expression such as "created_at" or
// "-created_at" (leading '-' = descending) into a validated sort key.
// An empty expression leaves store-native order.
func ParseOrdering(expr string) (key string, descending bool, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", false, nil
	}
	if strings.HasPrefix(expr, "-") {
		descending = true
		expr = expr[1:]
	}
	if !sortKeys[expr] {
		return "", false, ErrInvalidOrdering
	}
	return expr, descending, nil
}

// TaskPatch enumerates exactly the updatable task fields. A nil pointer
// leaves the field untouched. Deadline is presence-tracked so that an
// explicit null (clear the deadline) is distinguished from absence.
type TaskPatch struct {
	Title       *string    // Must be non-empty when set
	Description *string    //
	Deadline    *time.Time // Consulted only when DeadlineSet; nil clears
	Completed   *bool      //
	Priority    *Priority  //
	DeadlineSet bool       //
}

// Empty returns true if the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.DeadlineSet &&
		p.Completed == nil && p.Priority == nil
}

// Result carries the outcome of a classifier capability. A failed or
// rejected remote response never surfaces as an error; it comes back as
// a Defaulted result carrying the fail-safe value and the reason.
type Result[T any] struct {
	Value     T
	Reason    string // Why the value was defaulted (empty when ok)
	Defaulted bool
}

// Ok wraps a successful classifier value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// DefaultedResult wraps a fail-safe value with the reason it was chosen.
func DefaultedResult[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Reason: reason, Defaulted: true}
}

// Classifier labels task text using a remote language model. Each
// capability is independently fallible and independently defaulted;
// no error crosses this boundary.
type Classifier interface {
	// ClassifyPriority returns a priority for the task text,
	// defaulting to PriorityLow on any failure.
	ClassifyPriority(ctx context.Context, title, description string) Result[Priority]

	// ClassifyTags returns up to 3 tag names drawn from the closed
	// vocabulary, defaulting to none on any failure.
	ClassifyTags(ctx context.Context, title, description string) Result[[]string]

	// Decompose returns up to 5 sub-task titles, defaulting to none
	// on any failure.
	Decompose(ctx context.Context, title, description string) Result[[]string]
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
