package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points int64
		level  int
	}{
		{0, 1},
		{-10, 1},
		{1, 1},
		{499, 1},
		{500, 2},
		{999, 2},
		{1000, 3},
		{2500, 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelFor(tc.points), "points=%d", tc.points)
	}
}

func TestNewLedger_ZeroState(t *testing.T) {
	now := time.Now().UTC()
	l := NewLedger("user_1", now)

	assert.Equal(t, "user_1", l.UserID)
	assert.Zero(t, l.TotalPoints)
	assert.Zero(t, l.ScanCount)
	assert.Zero(t, l.CO2TrackedKg)
	assert.NotNil(t, l.UnlockedAchievements)
	assert.NotNil(t, l.RedeemedRewards)
	assert.Equal(t, 1, l.Level())
}

func TestProgressLedger_Membership(t *testing.T) {
	l := &ProgressLedger{
		UnlockedAchievements: []string{"first_scan"},
		RedeemedRewards:      []string{"plant_tree"},
	}

	assert.True(t, l.HasUnlocked("first_scan"))
	assert.False(t, l.HasUnlocked("scanner_25"))
	assert.True(t, l.HasRedeemed("plant_tree"))
	assert.False(t, l.HasRedeemed("eco_consult"))
}

func TestRewardByID(t *testing.T) {
	r, ok := RewardByID("plant_tree")
	assert.True(t, ok)
	assert.EqualValues(t, 250, r.Cost)

	_, ok = RewardByID("nonexistent")
	assert.False(t, ok)
}

func TestRewardCatalog_WellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range Rewards {
		assert.NotEmpty(t, r.ID)
		assert.Positive(t, r.Cost, r.ID)
		assert.False(t, seen[r.ID], "duplicate reward id %s", r.ID)
		seen[r.ID] = true
	}
}
