package domain

import "math"

// MetricKind names the counter an achievement requirement is evaluated
// against.
type MetricKind string

const (
	MetricScans         MetricKind = "scans"
	MetricCO2           MetricKind = "co2"
	MetricPoints        MetricKind = "points"
	MetricGoals         MetricKind = "goals"
	MetricCategoryGoals MetricKind = "category_goals"
)

// Metrics is a point-in-time snapshot of a user's raw counters. The zero
// value is valid and evaluates every achievement to zero progress.
type Metrics struct {
	ScanCount                int64
	CO2TrackedKg             float64
	TotalPoints              int64
	CompletedGoals           int64
	CompletedGoalsByCategory map[GoalCategory]int64
}

// AchievementDefinition is one static, predicate-defined badge. Per-user
// unlock state is never stored here; it is derived by evaluating the
// definition against the user's current metrics.
type AchievementDefinition struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Metric      MetricKind   `json:"metric"`
	Threshold   float64      `json:"threshold"`
	Category    GoalCategory `json:"category,omitempty"` // only for MetricCategoryGoals
}

// Achievements is the static achievement catalog.
var Achievements = []AchievementDefinition{
	{ID: "first_scan", Name: "First Scan", Description: "Scan your first product.", Metric: MetricScans, Threshold: 1},
	{ID: "scanner_25", Name: "Label Reader", Description: "Scan 25 products.", Metric: MetricScans, Threshold: 25},
	{ID: "scanner_100", Name: "Shelf Scientist", Description: "Scan 100 products.", Metric: MetricScans, Threshold: 100},
	{ID: "points_500", Name: "Green Starter", Description: "Earn 500 points.", Metric: MetricPoints, Threshold: 500},
	{ID: "points_2000", Name: "Eco Champion", Description: "Earn 2000 points.", Metric: MetricPoints, Threshold: 2000},
	{ID: "co2_10", Name: "Carbon Counter", Description: "Track 10 kg of CO2.", Metric: MetricCO2, Threshold: 10},
	{ID: "co2_50", Name: "Climate Keeper", Description: "Track 50 kg of CO2.", Metric: MetricCO2, Threshold: 50},
	{ID: "goal_first", Name: "Goal Getter", Description: "Complete your first goal.", Metric: MetricGoals, Threshold: 1},
	{ID: "goal_five", Name: "Habit Builder", Description: "Complete five goals.", Metric: MetricGoals, Threshold: 5},
	{ID: "water_warrior", Name: "Water Warrior", Description: "Complete three water goals.", Metric: MetricCategoryGoals, Threshold: 3, Category: CategoryWater},
	{ID: "waste_wizard", Name: "Waste Wizard", Description: "Complete three waste goals.", Metric: MetricCategoryGoals, Threshold: 3, Category: CategoryWaste},
}

// Evaluation is the result of checking one definition against a metrics
// snapshot. Progress is 0..100 and is always 100 when Unlocked.
type Evaluation struct {
	ID       string  `json:"id"`
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

// value extracts the metric this definition measures. Missing data reads as
// zero, never as an error.
func (d AchievementDefinition) value(m Metrics) float64 {
	switch d.Metric {
	case MetricScans:
		return float64(m.ScanCount)
	case MetricCO2:
		return m.CO2TrackedKg
	case MetricPoints:
		return float64(m.TotalPoints)
	case MetricGoals:
		return float64(m.CompletedGoals)
	case MetricCategoryGoals:
		return float64(m.CompletedGoalsByCategory[d.Category])
	default:
		return 0
	}
}

// Evaluate checks a single definition against a metrics snapshot. Pure; no
// side effects. The caller decides whether to pin a fresh unlock on the
// ledger.
func Evaluate(d AchievementDefinition, m Metrics) Evaluation {
	value := d.value(m)
	if d.Threshold <= 0 || value >= d.Threshold {
		return Evaluation{ID: d.ID, Unlocked: true, Progress: 100}
	}
	if value < 0 {
		value = 0
	}
	progress := math.Round(value/d.Threshold*1000) / 10
	return Evaluation{ID: d.ID, Unlocked: false, Progress: progress}
}

// EvaluateAll evaluates every catalog definition against the snapshot.
func EvaluateAll(m Metrics) []Evaluation {
	out := make([]Evaluation, 0, len(Achievements))
	for _, d := range Achievements {
		out = append(out, Evaluate(d, m))
	}
	return out
}
