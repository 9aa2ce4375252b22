package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findDef(t *testing.T, id string) AchievementDefinition {
	t.Helper()
	for _, d := range Achievements {
		if d.ID == id {
			return d
		}
	}
	t.Fatalf("achievement %s not in catalog", id)
	return AchievementDefinition{}
}

func TestEvaluate_UnlockAtThreshold(t *testing.T) {
	def := findDef(t, "points_500")

	eval := Evaluate(def, Metrics{TotalPoints: 500})
	assert.True(t, eval.Unlocked)
	assert.Equal(t, 100.0, eval.Progress)

	eval = Evaluate(def, Metrics{TotalPoints: 800})
	assert.True(t, eval.Unlocked, "past the threshold stays unlocked")
	assert.Equal(t, 100.0, eval.Progress)
}

func TestEvaluate_ProgressRoundsToOneDecimal(t *testing.T) {
	def := findDef(t, "points_500")

	eval := Evaluate(def, Metrics{TotalPoints: 499})
	assert.False(t, eval.Unlocked)
	assert.Equal(t, 99.8, eval.Progress, "499/500 must not round up to 100")

	eval = Evaluate(def, Metrics{TotalPoints: 250})
	assert.Equal(t, 50.0, eval.Progress)

	eval = Evaluate(def, Metrics{TotalPoints: 1})
	assert.Equal(t, 0.2, eval.Progress)
}

func TestEvaluate_ZeroMetrics(t *testing.T) {
	for _, eval := range EvaluateAll(Metrics{}) {
		assert.False(t, eval.Unlocked, eval.ID)
		assert.Equal(t, 0.0, eval.Progress, eval.ID)
	}
}

func TestEvaluate_NegativeValueReadsAsZero(t *testing.T) {
	def := findDef(t, "points_500")
	eval := Evaluate(def, Metrics{TotalPoints: -50})
	assert.False(t, eval.Unlocked)
	assert.Equal(t, 0.0, eval.Progress)
}

func TestEvaluate_CategoryGoals(t *testing.T) {
	def := findDef(t, "water_warrior")
	require.Equal(t, MetricCategoryGoals, def.Metric)

	m := Metrics{
		CompletedGoals: 5,
		CompletedGoalsByCategory: map[GoalCategory]int64{
			CategoryWaste: 5,
		},
	}
	eval := Evaluate(def, m)
	assert.False(t, eval.Unlocked, "waste goals must not count toward the water badge")
	assert.Equal(t, 0.0, eval.Progress)

	m.CompletedGoalsByCategory[CategoryWater] = 3
	eval = Evaluate(def, m)
	assert.True(t, eval.Unlocked)
}

func TestEvaluate_NilCategoryMapIsZero(t *testing.T) {
	def := findDef(t, "water_warrior")
	eval := Evaluate(def, Metrics{CompletedGoals: 10})
	assert.False(t, eval.Unlocked)
	assert.Equal(t, 0.0, eval.Progress)
}

func TestEvaluateAll_CoversCatalog(t *testing.T) {
	evals := EvaluateAll(Metrics{ScanCount: 30, TotalPoints: 600})
	require.Len(t, evals, len(Achievements))

	byID := make(map[string]Evaluation)
	for _, e := range evals {
		byID[e.ID] = e
	}
	assert.True(t, byID["first_scan"].Unlocked)
	assert.True(t, byID["scanner_25"].Unlocked)
	assert.False(t, byID["scanner_100"].Unlocked)
	assert.Equal(t, 30.0, byID["scanner_100"].Progress)
	assert.True(t, byID["points_500"].Unlocked)
	assert.Equal(t, 30.0, byID["points_2000"].Progress)
}
