package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// LedgerRepository defines persistence operations for the per-user progress
// ledger document. Implementations must make every mutation a single-document
// atomic operation: cross-document delivery order is not guaranteed by the
// store, so invariants like "redeem implies points decreased" can only be
// enforced inside one write.
type LedgerRepository interface {
	// GetOrInit returns the user's ledger, lazily writing the zero-state
	// document when absent. Concurrent initialisation is safe because the
	// zero-state is idempotent.
	GetOrInit(ctx context.Context, userID string) (*domain.ProgressLedger, error)

	// AwardPoints atomically increments total_points by amount (> 0) using
	// the store's increment primitive, never read-modify-write.
	AwardPoints(ctx context.Context, userID string, amount int64) error

	// Redeem atomically deducts cost and pins rewardID in redeemed_rewards,
	// both in one write or not at all. Returns domain.ErrInsufficientPoints
	// or domain.ErrAlreadyRedeemed on business-rule rejection.
	Redeem(ctx context.Context, userID, rewardID string, cost int64) (*domain.ProgressLedger, error)

	// RecordUnlock pins an achievement id. Idempotent: recording an already
	// present id is a no-op, not an error.
	RecordUnlock(ctx context.Context, userID, achievementID string) error

	// RecordScan atomically increments scan_count, co2_tracked_kg and
	// total_points in a single write.
	RecordScan(ctx context.Context, userID string, co2Kg float64, points int64) error

	// Reset rewrites the ledger to the zero state. This is the only
	// operation allowed to shrink the unlock and redeem sets.
	Reset(ctx context.Context, userID string) error
}
