package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// GoalRepository defines persistence operations for goal documents. Each
// goal is its own document in the user's tree; all lookups are scoped to
// the owning user.
type GoalRepository interface {
	Insert(ctx context.Context, g *domain.Goal) error
	// FindByID retrieves one goal. Returns domain.ErrGoalNotFound when the
	// id is unknown to this user.
	FindByID(ctx context.Context, userID, goalID string) (*domain.Goal, error)
	Update(ctx context.Context, g *domain.Goal) error
	// Delete removes the goal. Returns domain.ErrGoalNotFound when nothing
	// matched.
	Delete(ctx context.Context, userID, goalID string) error
	// ListByUser returns all goals for a user in creation order.
	ListByUser(ctx context.Context, userID string) ([]*domain.Goal, error)
	// CountCompleted returns the number of completed goals, in total and
	// per category, for achievement evaluation.
	CountCompleted(ctx context.Context, userID string) (int64, map[domain.GoalCategory]int64, error)
}
