package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenloop/progress-engine/internal/core/ports"
)

// ChangeWatcher implements ports.Watcher using MongoDB change streams. Each
// Watch call opens one stream filtered to the user's documents on one
// collection; every observed change triggers a fresh read of the current
// state so subscribers always receive complete snapshots rather than
// deltas.
type ChangeWatcher struct {
	db        *mongo.Database
	ledgers   *LedgerRepository
	goals     *GoalRepository
	carts     *CartRepository
	favorites *FavoriteRepository
	log       zerolog.Logger
}

func NewChangeWatcher(
	db *mongo.Database,
	ledgers *LedgerRepository,
	goals *GoalRepository,
	carts *CartRepository,
	favorites *FavoriteRepository,
	log zerolog.Logger,
) *ChangeWatcher {
	return &ChangeWatcher{
		db:        db,
		ledgers:   ledgers,
		goals:     goals,
		carts:     carts,
		favorites: favorites,
		log:       log,
	}
}

// Watch opens a change stream for the (user, path) pair. The returned
// channel delivers the current snapshot first, then one snapshot per
// observed change, and closes after a stream error or when ctx is
// cancelled. No internal retry: the driver's own resumption handles
// transient drops, and a terminal error is surfaced once as an error event.
func (w *ChangeWatcher) Watch(ctx context.Context, userID string, path ports.SyncPath) (<-chan ports.SyncEvent, error) {
	colName, filter, err := w.streamTarget(userID, path)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := w.db.Collection(colName).Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("open change stream %s: %w", path, err)
	}

	out := make(chan ports.SyncEvent, 1)
	go w.run(ctx, stream, userID, path, out)
	return out, nil
}

func (w *ChangeWatcher) run(ctx context.Context, stream *mongo.ChangeStream, userID string, path ports.SyncPath, out chan<- ports.SyncEvent) {
	defer close(out)
	defer stream.Close(context.Background())

	// Initial snapshot before any change arrives.
	w.emit(ctx, userID, path, out)

	for stream.Next(ctx) {
		w.emit(ctx, userID, path, out)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		w.log.Warn().Err(err).Str("path", string(path)).Str("user_id", userID).Msg("change stream ended")
		out <- ports.SyncEvent{Path: path, Err: err}
	}
}

// emit reads the current state for the path and sends it as a snapshot. A
// failed read is surfaced as an error event; the subscriber keeps its last
// known good state.
func (w *ChangeWatcher) emit(ctx context.Context, userID string, path ports.SyncPath, out chan<- ports.SyncEvent) {
	ev, err := w.snapshot(ctx, userID, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		out <- ports.SyncEvent{Path: path, Err: err}
		return
	}
	select {
	case out <- ev:
	case <-ctx.Done():
	}
}

func (w *ChangeWatcher) snapshot(ctx context.Context, userID string, path ports.SyncPath) (ports.SyncEvent, error) {
	switch path {
	case ports.PathLedger:
		ledger, err := w.ledgers.GetOrInit(ctx, userID)
		if err != nil {
			return ports.SyncEvent{}, err
		}
		return ports.SyncEvent{Path: path, Ledger: ports.Snapshot(ledger)}, nil
	case ports.PathGoals:
		goals, err := w.goals.ListByUser(ctx, userID)
		if err != nil {
			return ports.SyncEvent{}, err
		}
		return ports.SyncEvent{Path: path, Goals: goals}, nil
	case ports.PathCart:
		cart, err := w.carts.Get(ctx, userID)
		if err != nil {
			return ports.SyncEvent{}, err
		}
		return ports.SyncEvent{Path: path, Cart: cart}, nil
	case ports.PathFavorites:
		favs, err := w.favorites.List(ctx, userID)
		if err != nil {
			return ports.SyncEvent{}, err
		}
		return ports.SyncEvent{Path: path, Favorites: favs}, nil
	default:
		return ports.SyncEvent{}, fmt.Errorf("unknown sync path %q", path)
	}
}

// streamTarget maps a sync path to its collection and per-user change
// filter. Ledger and cart documents are keyed by user id, so documentKey
// matches every operation type. Goal and favorite documents only carry the
// owner in the document body, which delete events do not include; delete
// events therefore pass the filter for every user and cost one redundant
// list read rather than a missed update.
func (w *ChangeWatcher) streamTarget(userID string, path ports.SyncPath) (string, bson.M, error) {
	byOwner := bson.M{"$or": []bson.M{
		{"fullDocument.user_id": userID},
		{"operationType": "delete"},
	}}
	switch path {
	case ports.PathLedger:
		return collectionLedgers, bson.M{"documentKey._id": userID}, nil
	case ports.PathCart:
		return collectionCarts, bson.M{"documentKey._id": userID}, nil
	case ports.PathGoals:
		return collectionGoals, byOwner, nil
	case ports.PathFavorites:
		return collectionFavorites, byOwner, nil
	default:
		return "", nil, fmt.Errorf("unknown sync path %q", path)
	}
}
