package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/api/metrics"
	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// ScanDedup abstracts the scan idempotency store (Redis).
type ScanDedup interface {
	IsDuplicate(ctx context.Context, userID, barcode string, ts time.Time) (bool, error)
	Mark(ctx context.Context, userID, barcode string, ts time.Time) error
}

type scanService struct {
	ledgers ports.LedgerRepository
	ledger  ports.LedgerService
	dedup   ScanDedup
	log     zerolog.Logger
}

// NewScanService returns a ScanService implementation.
func NewScanService(
	ledgers ports.LedgerRepository,
	ledger ports.LedgerService,
	dedup ScanDedup,
	log zerolog.Logger,
) ports.ScanService {
	return &scanService{
		ledgers: ledgers,
		ledger:  ledger,
		dedup:   dedup,
		log:     log,
	}
}

// Process deduplicates and applies a single scan event: one atomic ledger
// write bumping scan count, tracked CO2 and points, followed by an unlock
// re-evaluation.
func (s *scanService) Process(ctx context.Context, in domain.ScanEvent) error {
	if in.UserID == "" {
		return domain.ErrNotAuthenticated
	}

	// 1. Idempotency check. Duplicates are silently skipped.
	isDup, err := s.dedup.IsDuplicate(ctx, in.UserID, in.Barcode, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("scan dedup check failed, processing anyway")
	} else if isDup {
		metrics.ScansDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("user_id", in.UserID).Str("barcode", in.Barcode).Msg("duplicate scan skipped")
		return nil
	}
	metrics.ScansDedupTotal.WithLabelValues("miss").Inc()

	// 2. Mark as processed before writing (prevents duplicate processing on retry).
	if markErr := s.dedup.Mark(ctx, in.UserID, in.Barcode, in.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("user_id", in.UserID).Msg("failed to set scan dedup key")
	}

	// 3. Single atomic ledger write for all three counters.
	if err := s.ledgers.RecordScan(ctx, in.UserID, in.CO2SavedKg, domain.PointsPerScan); err != nil {
		return fmt.Errorf("process scan: %w", err)
	}

	// 4. Re-evaluate achievements (non-fatal on failure).
	if err := s.ledger.RefreshUnlocks(ctx, in.UserID); err != nil {
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("unlock refresh after scan failed")
	}

	metrics.ScansProcessedTotal.WithLabelValues(in.Source).Inc()
	metrics.PointsAwardedTotal.WithLabelValues("scan").Add(float64(domain.PointsPerScan))

	s.log.Info().
		Str("user_id", in.UserID).
		Str("barcode", in.Barcode).
		Float64("co2_saved_kg", in.CO2SavedKg).
		Str("source", in.Source).
		Msg("scan processed")

	return nil
}
