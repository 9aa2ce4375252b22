package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// GoalService implements goal CRUD and derived-progress maintenance.
type GoalService struct {
	repo   ports.GoalRepository
	ledger ports.LedgerService
	log    zerolog.Logger
}

func NewGoalService(repo ports.GoalRepository, ledger ports.LedgerService, log zerolog.Logger) *GoalService {
	return &GoalService{repo: repo, ledger: ledger, log: log}
}

// Create validates the input and persists a new goal with its fixed
// milestone schedule, zero progress, and derived fields recomputed.
func (s *GoalService) Create(ctx context.Context, userID string, input ports.CreateGoalInput) (*domain.Goal, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidGoal)
	}
	if input.Target <= 0 {
		return nil, fmt.Errorf("%w: target must be positive", domain.ErrInvalidGoal)
	}
	if input.Deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline is required", domain.ErrInvalidGoal)
	}
	category := domain.GoalCategory(input.Category)
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidGoal, input.Category)
	}
	priority := domain.GoalPriority(input.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidGoal, input.Priority)
	}

	now := time.Now().UTC()
	goal := &domain.Goal{
		ID:                  uuid.NewString(),
		UserID:              userID,
		Title:               strings.TrimSpace(input.Title),
		Description:         strings.TrimSpace(input.Description),
		Category:            category,
		Priority:            priority,
		Target:              input.Target,
		Current:             0,
		Deadline:            input.Deadline,
		Milestones:          domain.MilestoneSchedule(input.Target),
		CompletedMilestones: []float64{},
		Completed:           false,
		Tags:                input.Tags,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("goal_id", goal.ID).Str("category", string(category)).Msg("goal created")
	return goal, nil
}

// UpdateProgress clamps the new value, recomputes derived state, and
// persists the goal. Completing a goal awards points exactly once per goal,
// even across retried updates.
func (s *GoalService) UpdateProgress(ctx context.Context, userID, goalID string, newCurrent float64) (*domain.Goal, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	goal, err := s.repo.FindByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	justCompleted := goal.ApplyProgress(newCurrent)
	goal.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("update goal progress: %w", err)
	}

	if justCompleted {
		awarded, err := s.ledger.AwardPointsOnce(ctx, userID,
			domain.PointsPerGoalCompleted, "goal:"+goal.ID, "goal_completed")
		if err != nil {
			s.log.Warn().Err(err).Str("goal_id", goal.ID).Msg("completion award failed")
		} else if awarded {
			s.log.Info().Str("user_id", userID).Str("goal_id", goal.ID).Msg("goal completed, points awarded")
		}
	}
	return goal, nil
}

// Delete removes a goal. Awarded points are never revoked.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	if err := s.repo.Delete(ctx, userID, goalID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("goal_id", goalID).Msg("goal deleted")
	return nil
}

// List returns the user's goals filtered and sorted. Stored documents whose
// derived fields have drifted from their source fields are repaired before
// being returned (best effort write-back).
func (s *GoalService) List(ctx context.Context, userID string, filter ports.GoalFilter, sortBy ports.GoalSort) ([]*domain.Goal, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	goals, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	for _, g := range goals {
		if g.Recompute() {
			s.log.Warn().Str("goal_id", g.ID).Msg("goal document violated completion invariant, repairing")
			if err := s.repo.Update(ctx, g); err != nil {
				s.log.Warn().Err(err).Str("goal_id", g.ID).Msg("failed to persist repaired goal")
			}
		}
	}

	filtered := goals[:0]
	for _, g := range goals {
		if matchGoal(g, filter) {
			filtered = append(filtered, g)
		}
	}
	sortGoals(filtered, sortBy)
	return filtered, nil
}

func matchGoal(g *domain.Goal, f ports.GoalFilter) bool {
	if f.Category != "" && string(g.Category) != f.Category {
		return false
	}
	if f.Priority != "" && string(g.Priority) != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if strings.Contains(strings.ToLower(g.Title), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(g.Description), needle) {
			return true
		}
		for _, tag := range g.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	}
	return true
}

// sortGoals orders in place. SliceStable keeps equal elements in their
// stored order so repeated calls return the same sequence.
func sortGoals(goals []*domain.Goal, by ports.GoalSort) {
	switch by {
	case ports.SortByDeadline:
		sort.SliceStable(goals, func(i, j int) bool {
			return goals[i].Deadline.Before(goals[j].Deadline)
		})
	case ports.SortByProgress:
		sort.SliceStable(goals, func(i, j int) bool {
			return goals[i].ProgressPercent() > goals[j].ProgressPercent()
		})
	case ports.SortByPriority:
		sort.SliceStable(goals, func(i, j int) bool {
			return goals[i].Priority.Weight() > goals[j].Priority.Weight()
		})
	default: // SortByCreated
		sort.SliceStable(goals, func(i, j int) bool {
			return goals[i].CreatedAt.After(goals[j].CreatedAt)
		})
	}
}
