package domain

import (
	"errors"
	"time"
)

// GoalCategory classifies the environmental impact area a goal targets.
type GoalCategory string

const (
	CategoryEnergy    GoalCategory = "energy"
	CategoryCarbon    GoalCategory = "carbon"
	CategoryWater     GoalCategory = "water"
	CategoryWaste     GoalCategory = "waste"
	CategoryTransport GoalCategory = "transport"
	CategoryFood      GoalCategory = "food"
)

// Categories lists every valid goal category.
var Categories = []GoalCategory{
	CategoryEnergy, CategoryCarbon, CategoryWater,
	CategoryWaste, CategoryTransport, CategoryFood,
}

// Valid reports whether the category is part of the known set.
func (c GoalCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// GoalPriority orders goals by user-declared importance.
type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

// Valid reports whether the priority is one of low/medium/high.
func (p GoalPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Weight maps a priority to a sortable rank (higher = more urgent).
func (p GoalPriority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// GoalStatus is the displayed state of a goal. It is a pure function of
// (current, target, deadline, now) and is never stored.
type GoalStatus string

const (
	GoalOnTrack   GoalStatus = "on_track"
	GoalOverdue   GoalStatus = "overdue"
	GoalCompleted GoalStatus = "completed"
)

var ErrGoalNotFound = errors.New("goal not found")
var ErrInvalidGoal = errors.New("invalid goal")

// milestoneStep is the spacing of the fixed milestone schedule.
const milestoneStep = 5

// Goal is a user-defined trackable target with derived completion state.
// Completed and CompletedMilestones are caches over Current and must be
// recomputed on every mutation of Current; they are repaired on read when a
// stored document has drifted (see Recompute).
type Goal struct {
	ID                  string       `json:"id" bson:"_id"`
	UserID              string       `json:"user_id" bson:"user_id"`
	Title               string       `json:"title" bson:"title"`
	Description         string       `json:"description,omitempty" bson:"description,omitempty"`
	Category            GoalCategory `json:"category" bson:"category"`
	Priority            GoalPriority `json:"priority" bson:"priority"`
	Target              float64      `json:"target" bson:"target"`
	Current             float64      `json:"current" bson:"current"`
	Deadline            time.Time    `json:"deadline" bson:"deadline"`
	Milestones          []float64    `json:"milestones" bson:"milestones"`
	CompletedMilestones []float64    `json:"completed_milestones" bson:"completed_milestones"`
	Completed           bool         `json:"completed" bson:"completed"`
	Tags                []string     `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedAt           time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" bson:"updated_at"`
}

// MilestoneSchedule returns the fixed step schedule for a target: every
// milestoneStep units up to and including the target. A target below the
// step size yields the target as its only milestone.
func MilestoneSchedule(target float64) []float64 {
	if target <= 0 {
		return nil
	}
	var ms []float64
	for m := float64(milestoneStep); m < target; m += milestoneStep {
		ms = append(ms, m)
	}
	ms = append(ms, target)
	return ms
}

// ApplyProgress clamps newCurrent to [0, Target] and recomputes the derived
// Completed and CompletedMilestones fields. It reports whether the goal
// flipped from incomplete to complete with this update.
func (g *Goal) ApplyProgress(newCurrent float64) (justCompleted bool) {
	wasCompleted := g.Completed
	if newCurrent < 0 {
		newCurrent = 0
	}
	if newCurrent > g.Target {
		newCurrent = g.Target
	}
	g.Current = newCurrent
	g.recomputeDerived()
	return g.Completed && !wasCompleted
}

// Recompute re-derives Completed and CompletedMilestones from Current and
// reports whether the stored values had drifted. Callers use this as the
// self-heal path for documents that violate the completion invariant.
func (g *Goal) Recompute() (changed bool) {
	prevCompleted := g.Completed
	prevMilestones := len(g.CompletedMilestones)
	g.recomputeDerived()
	return g.Completed != prevCompleted || len(g.CompletedMilestones) != prevMilestones
}

func (g *Goal) recomputeDerived() {
	g.Completed = g.Current >= g.Target
	reached := make([]float64, 0, len(g.Milestones))
	for _, m := range g.Milestones {
		if m <= g.Current {
			reached = append(reached, m)
		}
	}
	g.CompletedMilestones = reached
}

// ProgressPercent returns completion as 0..100.
func (g *Goal) ProgressPercent() float64 {
	if g.Target <= 0 {
		return 0
	}
	pct := g.Current / g.Target * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// StatusAt derives the displayed status at a point in time. A passed
// deadline never completes or deletes a goal; it only flips the display to
// overdue.
func (g *Goal) StatusAt(now time.Time) GoalStatus {
	if g.Completed {
		return GoalCompleted
	}
	if !g.Deadline.IsZero() && now.After(g.Deadline) {
		return GoalOverdue
	}
	return GoalOnTrack
}
