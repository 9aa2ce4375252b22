package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// ScanService processes incoming product scan events.
type ScanService interface {
	Process(ctx context.Context, event domain.ScanEvent) error
}
