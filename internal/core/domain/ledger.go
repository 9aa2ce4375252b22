package domain

import (
	"errors"
	"time"
)

var ErrNotAuthenticated = errors.New("not authenticated")
var ErrRewardNotFound = errors.New("reward not found")
var ErrInsufficientPoints = errors.New("insufficient points")
var ErrAlreadyRedeemed = errors.New("reward already redeemed")
var ErrSyncFailed = errors.New("sync failed")

// Point values granted per logical activity. Every award in the engine is
// routed through the ledger with one of these amounts; no feature keeps its
// own copy of the points balance.
const (
	PointsPerScan          int64 = 10
	PointsPerFavorite      int64 = 5
	PointsPerCartAdd       int64 = 5
	PointsPerGoalCompleted int64 = 50
)

// pointsPerLevel is the size of one level band on the level curve.
const pointsPerLevel = 500

// ProgressLedger is the canonical per-user record of cumulative activity:
// points, raw activity counters, and the monotonic unlock/redeem sets.
// The level is never persisted as a source of truth; it is always derived
// from TotalPoints (see Level).
type ProgressLedger struct {
	UserID               string    `json:"user_id" bson:"_id"`
	TotalPoints          int64     `json:"total_points" bson:"total_points"`
	ScanCount            int64     `json:"scan_count" bson:"scan_count"`
	CO2TrackedKg         float64   `json:"co2_tracked_kg" bson:"co2_tracked_kg"`
	UnlockedAchievements []string  `json:"unlocked_achievements" bson:"unlocked_achievements"`
	RedeemedRewards      []string  `json:"redeemed_rewards" bson:"redeemed_rewards"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" bson:"updated_at"`
}

// NewLedger returns the zero-state ledger for a user. Writing this state is
// idempotent, so concurrent lazy initialisation is harmless.
func NewLedger(userID string, now time.Time) *ProgressLedger {
	return &ProgressLedger{
		UserID:               userID,
		TotalPoints:          0,
		UnlockedAchievements: []string{},
		RedeemedRewards:      []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// LevelFor derives the level from a points total. Level 1 starts at zero
// points and each further level requires pointsPerLevel more.
func LevelFor(totalPoints int64) int {
	if totalPoints <= 0 {
		return 1
	}
	return 1 + int(totalPoints/pointsPerLevel)
}

// Level returns the ledger's derived level.
func (l *ProgressLedger) Level() int {
	return LevelFor(l.TotalPoints)
}

// HasUnlocked reports whether the achievement id is pinned in the ledger.
func (l *ProgressLedger) HasUnlocked(achievementID string) bool {
	for _, id := range l.UnlockedAchievements {
		if id == achievementID {
			return true
		}
	}
	return false
}

// HasRedeemed reports whether the reward id has already been redeemed.
func (l *ProgressLedger) HasRedeemed(rewardID string) bool {
	for _, id := range l.RedeemedRewards {
		if id == rewardID {
			return true
		}
	}
	return false
}
