package ports

import (
	"context"
	"time"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// CreateGoalInput carries all data needed to create a goal.
type CreateGoalInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Target      float64
	Deadline    time.Time
	Tags        []string
}

// GoalFilter narrows a goal listing. Empty fields match everything. Search
// is a case-insensitive substring match over title, description and tags.
type GoalFilter struct {
	Category string
	Priority string
	Search   string
}

// GoalSort selects the ordering of a goal listing. All orderings are
// stable: equal elements keep their stored order across calls.
type GoalSort string

const (
	SortByDeadline GoalSort = "deadline" // soonest deadline first
	SortByProgress GoalSort = "progress" // highest completion first
	SortByPriority GoalSort = "priority" // high before medium before low
	SortByCreated  GoalSort = "created"  // newest first (default)
)

// GoalService defines use-case operations on goals.
type GoalService interface {
	Create(ctx context.Context, userID string, input CreateGoalInput) (*domain.Goal, error)
	// UpdateProgress clamps newCurrent to [0, target] and recomputes the
	// derived completion state. Completing a goal awards points once.
	UpdateProgress(ctx context.Context, userID, goalID string, newCurrent float64) (*domain.Goal, error)
	// Delete removes a goal. Points already awarded are never revoked.
	Delete(ctx context.Context, userID, goalID string) error
	List(ctx context.Context, userID string, filter GoalFilter, sort GoalSort) ([]*domain.Goal, error)
}
