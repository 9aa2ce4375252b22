package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// LedgerSnapshot is the point-in-time ledger view handed to the UI layer.
// Level is derived from the points total at read time.
type LedgerSnapshot struct {
	UserID               string   `json:"user_id"`
	TotalPoints          int64    `json:"total_points"`
	Level                int      `json:"level"`
	ScanCount            int64    `json:"scan_count"`
	CO2TrackedKg         float64  `json:"co2_tracked_kg"`
	UnlockedAchievements []string `json:"unlocked_achievements"`
	RedeemedRewards      []string `json:"redeemed_rewards"`
}

// RedeemResult is returned after a successful redemption.
type RedeemResult struct {
	RewardID    string `json:"reward_id"`
	Cost        int64  `json:"cost"`
	TotalPoints int64  `json:"total_points"`
	Level       int    `json:"level"`
}

// AchievementStatus pairs a catalog definition with the user's evaluated
// unlock state. A pinned unlock stays unlocked at progress 100 even if the
// underlying metric later regresses.
type AchievementStatus struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Unlocked    bool    `json:"unlocked"`
	Progress    float64 `json:"progress"`
}

// LedgerService defines use-case operations on the shared points currency
// and the monotonic unlock/redeem ledgers. Every feature that touches
// points routes through this service; none keeps a local balance.
type LedgerService interface {
	GetLedger(ctx context.Context, userID string) (*LedgerSnapshot, error)

	// AwardPoints increments the balance unconditionally. The source label
	// is used for logging and metrics only.
	AwardPoints(ctx context.Context, userID string, amount int64, source string) error

	// AwardPointsOnce awards at most once per eventKey, making retried or
	// re-rendered triggers (favorite toggles, repeated cart adds) safe.
	// Returns false without error when the event was already consumed.
	AwardPointsOnce(ctx context.Context, userID string, amount int64, eventKey, source string) (bool, error)

	// Redeem exchanges points for a catalog reward. Fails with
	// domain.ErrRewardNotFound, domain.ErrInsufficientPoints or
	// domain.ErrAlreadyRedeemed; on failure the ledger is unchanged.
	Redeem(ctx context.Context, userID, rewardID string) (*RedeemResult, error)

	// Achievements evaluates the full catalog against current metrics and
	// pins any freshly satisfied unlocks on the ledger.
	Achievements(ctx context.Context, userID string) ([]AchievementStatus, error)

	// RefreshUnlocks re-evaluates the catalog and records new unlocks
	// without building the full status view. Called after mutations that
	// may flip an achievement.
	RefreshUnlocks(ctx context.Context, userID string) error

	// ResetLedger rewrites the user's ledger to zero state (admin only).
	ResetLedger(ctx context.Context, userID string) error
}

// Snapshot converts a domain ledger into the UI view.
func Snapshot(l *domain.ProgressLedger) *LedgerSnapshot {
	return &LedgerSnapshot{
		UserID:               l.UserID,
		TotalPoints:          l.TotalPoints,
		Level:                l.Level(),
		ScanCount:            l.ScanCount,
		CO2TrackedKg:         l.CO2TrackedKg,
		UnlockedAchievements: append([]string{}, l.UnlockedAchievements...),
		RedeemedRewards:      append([]string{}, l.RedeemedRewards...),
	}
}
