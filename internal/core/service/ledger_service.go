package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/api/metrics"
	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// AwardGuard abstracts the at-most-once award store (Redis). Acquire claims
// a logical event key; only the first claimant may award. Release returns
// the key when the award write failed so a retry can claim it again.
type AwardGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// LedgerService owns the shared points currency and the monotonic
// unlock/redeem ledgers.
type LedgerService struct {
	ledgers ports.LedgerRepository
	goals   ports.GoalRepository
	guard   AwardGuard
	log     zerolog.Logger
}

func NewLedgerService(ledgers ports.LedgerRepository, goals ports.GoalRepository, guard AwardGuard, log zerolog.Logger) *LedgerService {
	return &LedgerService{ledgers: ledgers, goals: goals, guard: guard, log: log}
}

// GetLedger returns the user's ledger snapshot, lazily initialising the
// zero state on first read.
func (s *LedgerService) GetLedger(ctx context.Context, userID string) (*ports.LedgerSnapshot, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	ledger, err := s.ledgers.GetOrInit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return ports.Snapshot(ledger), nil
}

// AwardPoints atomically credits the balance. Callers that can be retriggered
// for the same logical event must use AwardPointsOnce instead.
func (s *LedgerService) AwardPoints(ctx context.Context, userID string, amount int64, source string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	if amount <= 0 {
		return fmt.Errorf("award amount must be positive, got %d", amount)
	}
	if err := s.ledgers.AwardPoints(ctx, userID, amount); err != nil {
		return fmt.Errorf("award points: %w", err)
	}
	metrics.PointsAwardedTotal.WithLabelValues(source).Add(float64(amount))
	s.log.Debug().Str("user_id", userID).Int64("amount", amount).Str("source", source).Msg("points awarded")

	if err := s.RefreshUnlocks(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("unlock refresh after award failed")
	}
	return nil
}

// AwardPointsOnce awards at most once per eventKey. The guard key is
// claimed before the write; a failed write releases the claim so the award
// is not lost forever.
func (s *LedgerService) AwardPointsOnce(ctx context.Context, userID string, amount int64, eventKey, source string) (bool, error) {
	if userID == "" {
		return false, domain.ErrNotAuthenticated
	}
	acquired, err := s.guard.Acquire(ctx, eventKey)
	if err != nil {
		return false, fmt.Errorf("award guard: %w", err)
	}
	if !acquired {
		s.log.Debug().Str("user_id", userID).Str("event_key", eventKey).Msg("award already consumed, skipping")
		return false, nil
	}
	if err := s.AwardPoints(ctx, userID, amount, source); err != nil {
		if relErr := s.guard.Release(ctx, eventKey); relErr != nil {
			s.log.Warn().Err(relErr).Str("event_key", eventKey).Msg("failed to release award key")
		}
		return false, err
	}
	return true, nil
}

// Redeem exchanges points for a catalog reward. The deduct and the redeemed
// marker land in one atomic document write; on any failure the ledger is
// unchanged.
func (s *LedgerService) Redeem(ctx context.Context, userID, rewardID string) (*ports.RedeemResult, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	reward, ok := domain.RewardByID(rewardID)
	if !ok {
		metrics.RedeemsTotal.WithLabelValues("not_found").Inc()
		return nil, domain.ErrRewardNotFound
	}

	ledger, err := s.ledgers.Redeem(ctx, userID, reward.ID, reward.Cost)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientPoints):
			metrics.RedeemsTotal.WithLabelValues("insufficient_points").Inc()
		case errors.Is(err, domain.ErrAlreadyRedeemed):
			metrics.RedeemsTotal.WithLabelValues("already_redeemed").Inc()
		default:
			metrics.RedeemsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("redeem %s: %w", reward.ID, err)
		}
		return nil, err
	}

	metrics.RedeemsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("user_id", userID).Str("reward_id", reward.ID).Int64("cost", reward.Cost).Msg("reward redeemed")

	return &ports.RedeemResult{
		RewardID:    reward.ID,
		Cost:        reward.Cost,
		TotalPoints: ledger.TotalPoints,
		Level:       ledger.Level(),
	}, nil
}

// Achievements evaluates the full catalog and pins freshly satisfied
// unlocks. Pinned unlocks stay unlocked even if the metric later regressed.
func (s *LedgerService) Achievements(ctx context.Context, userID string) ([]ports.AchievementStatus, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	ledger, m, err := s.collectMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]ports.AchievementStatus, 0, len(domain.Achievements))
	for _, def := range domain.Achievements {
		eval := domain.Evaluate(def, m)
		pinned := ledger.HasUnlocked(def.ID)
		if eval.Unlocked && !pinned {
			if err := s.recordUnlock(ctx, userID, def.ID); err != nil {
				s.log.Warn().Err(err).Str("achievement_id", def.ID).Msg("failed to record unlock")
			} else {
				pinned = true
			}
		}
		status := ports.AchievementStatus{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Unlocked:    eval.Unlocked || pinned,
			Progress:    eval.Progress,
		}
		if status.Unlocked {
			status.Progress = 100
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// RefreshUnlocks re-evaluates the catalog after a mutation and records any
// newly satisfied unlocks.
func (s *LedgerService) RefreshUnlocks(ctx context.Context, userID string) error {
	ledger, m, err := s.collectMetrics(ctx, userID)
	if err != nil {
		return err
	}
	for _, eval := range domain.EvaluateAll(m) {
		if eval.Unlocked && !ledger.HasUnlocked(eval.ID) {
			if err := s.recordUnlock(ctx, userID, eval.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResetLedger rewrites the ledger to zero state. Admin-only; the single
// sanctioned shrink path for the monotonic sets.
func (s *LedgerService) ResetLedger(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	if err := s.ledgers.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("ledger reset")
	return nil
}

func (s *LedgerService) recordUnlock(ctx context.Context, userID, achievementID string) error {
	if err := s.ledgers.RecordUnlock(ctx, userID, achievementID); err != nil {
		return fmt.Errorf("record unlock %s: %w", achievementID, err)
	}
	metrics.UnlocksRecordedTotal.Inc()
	s.log.Info().Str("user_id", userID).Str("achievement_id", achievementID).Msg("achievement unlocked")
	return nil
}

// collectMetrics assembles the evaluation snapshot from the ledger and the
// goal completion counts. Missing data reads as zero.
func (s *LedgerService) collectMetrics(ctx context.Context, userID string) (*domain.ProgressLedger, domain.Metrics, error) {
	ledger, err := s.ledgers.GetOrInit(ctx, userID)
	if err != nil {
		return nil, domain.Metrics{}, fmt.Errorf("collect metrics: %w", err)
	}
	completed, byCategory, err := s.goals.CountCompleted(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("goal counts unavailable, evaluating without them")
		completed, byCategory = 0, nil
	}
	m := domain.Metrics{
		ScanCount:                ledger.ScanCount,
		CO2TrackedKg:             ledger.CO2TrackedKg,
		TotalPoints:              ledger.TotalPoints,
		CompletedGoals:           completed,
		CompletedGoalsByCategory: byCategory,
	}
	return ledger, m, nil
}
