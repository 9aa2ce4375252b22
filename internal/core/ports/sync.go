package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// SyncPath identifies one watched document path in a user's tree.
type SyncPath string

const (
	PathLedger    SyncPath = "ledger"
	PathGoals     SyncPath = "goals"
	PathCart      SyncPath = "cart"
	PathFavorites SyncPath = "favorites"
)

// SyncPaths lists every path the subscription manager tracks.
var SyncPaths = []SyncPath{PathLedger, PathGoals, PathCart, PathFavorites}

// SyncEvent is one snapshot (or error) delivered on a subscription. Exactly
// one payload field matching Path is set on a successful event; Err is set
// instead when the listener failed. An error never carries a payload: the
// subscriber keeps rendering its last known good state.
type SyncEvent struct {
	Path      SyncPath           `json:"path"`
	Ledger    *LedgerSnapshot    `json:"ledger,omitempty"`
	Goals     []*domain.Goal     `json:"goals,omitempty"`
	Cart      *domain.Cart       `json:"cart,omitempty"`
	Favorites []*domain.Favorite `json:"favorites,omitempty"`
	Err       error              `json:"-"`
}

// Watcher opens a change-notification stream for one (user, path). The
// returned channel first delivers the current snapshot, then one event per
// observed change, and closes after an error event or when ctx is
// cancelled. The watcher never retries internally; reconnect behaviour
// belongs to the store client.
type Watcher interface {
	Watch(ctx context.Context, userID string, path SyncPath) (<-chan SyncEvent, error)
}
