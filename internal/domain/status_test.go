package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		deadline  *time.Time
		name      string
		want      Status
		completed bool
	}{
		{name: "completed without deadline", completed: true, deadline: nil, want: StatusCompleted},
		{name: "completed overrides past deadline", completed: true, deadline: &past, want: StatusCompleted},
		{name: "completed overrides future deadline", completed: true, deadline: &future, want: StatusCompleted},
		{name: "past deadline", completed: false, deadline: &past, want: StatusMissed},
		{name: "future deadline", completed: false, deadline: &future, want: StatusUpcoming},
		{name: "deadline exactly now", completed: false, deadline: &now, want: StatusUpcoming},
		{name: "no deadline", completed: false, deadline: nil, want: StatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.completed, tt.deadline, now))
		})
	}
}

func TestDeriveStatus_RecomputesAfterClear(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	// Completing then clearing completion falls back to the deadline view.
	assert.Equal(t, StatusCompleted, DeriveStatus(true, &past, now))
	assert.Equal(t, StatusMissed, DeriveStatus(false, &past, now))
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("  Missed ")
	require.NoError(t, err)
	assert.Equal(t, StatusMissed, status)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParsePriority(t *testing.T) {
	priority, err := ParsePriority("High")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, priority)

	priority, err = ParsePriority(" critical\n")
	require.NoError(t, err)
	assert.Equal(t, PriorityCritical, priority)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}
