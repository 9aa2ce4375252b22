package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

const collectionLedgers = "ledgers"

// LedgerRepository implements ports.LedgerRepository on MongoDB. Every
// mutation is a single-document atomic update; cross-document ordering is
// never relied on.
type LedgerRepository struct {
	col *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{col: db.Collection(collectionLedgers)}
}

// GetOrInit returns the ledger, upserting the zero state when absent. The
// zero state is idempotent, so two near-simultaneous initialisations
// converge on the same document.
func (r *LedgerRepository) GetOrInit(ctx context.Context, userID string) (*domain.ProgressLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	zero := domain.NewLedger(userID, time.Now().UTC())
	update := bson.M{"$setOnInsert": bson.M{
		"total_points":          zero.TotalPoints,
		"scan_count":            zero.ScanCount,
		"co2_tracked_kg":        zero.CO2TrackedKg,
		"unlocked_achievements": zero.UnlockedAchievements,
		"redeemed_rewards":      zero.RedeemedRewards,
		"created_at":            zero.CreatedAt,
		"updated_at":            zero.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var ledger domain.ProgressLedger
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// AwardPoints uses the store's increment primitive so concurrent awards
// from different features never lose updates.
func (r *LedgerRepository) AwardPoints(ctx context.Context, userID string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"total_points": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

// Redeem deducts the cost and pins the reward id in one conditional write.
// The filter rejects the update when the balance is short or the reward is
// already present, so both effects apply together or not at all.
func (r *LedgerRepository) Redeem(ctx context.Context, userID, rewardID string, cost int64) (*domain.ProgressLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":              userID,
		"total_points":     bson.M{"$gte": cost},
		"redeemed_rewards": bson.M{"$ne": rewardID},
	}
	update := bson.M{
		"$inc":      bson.M{"total_points": -cost},
		"$addToSet": bson.M{"redeemed_rewards": rewardID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ledger domain.ProgressLedger
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ledger)
	if err == nil {
		return &ledger, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The conditional write matched nothing; read the document to classify
	// the rejection. The ledger is unchanged either way.
	current, readErr := r.GetOrInit(ctx, userID)
	if readErr != nil {
		return nil, readErr
	}
	if current.HasRedeemed(rewardID) {
		return nil, domain.ErrAlreadyRedeemed
	}
	return nil, domain.ErrInsufficientPoints
}

// RecordUnlock pins an achievement id with $addToSet, making repeated
// recording of the same unlock a no-op.
func (r *LedgerRepository) RecordUnlock(ctx context.Context, userID, achievementID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$addToSet": bson.M{"unlocked_achievements": achievementID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

// RecordScan bumps scan count, tracked CO2 and points in one write.
func (r *LedgerRepository) RecordScan(ctx context.Context, userID string, co2Kg float64, points int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{
			"scan_count":     1,
			"co2_tracked_kg": co2Kg,
			"total_points":   points,
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

// Reset rewrites the document to the zero state. The only operation allowed
// to shrink the monotonic sets.
func (r *LedgerRepository) Reset(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	zero := domain.NewLedger(userID, time.Now().UTC())
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": userID}, zero, options.Replace().SetUpsert(true))
	return err
}
