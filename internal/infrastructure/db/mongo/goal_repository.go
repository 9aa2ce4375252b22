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

const collectionGoals = "goals"

// GoalRepository implements ports.GoalRepository on MongoDB. Each goal is
// its own document; every query is scoped to the owning user id.
type GoalRepository struct {
	col *mongo.Collection
}

func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{col: db.Collection(collectionGoals)}
}

func (r *GoalRepository) Insert(ctx context.Context, g *domain.Goal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, g)
	return err
}

func (r *GoalRepository) FindByID(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var g domain.Goal
	err := r.col.FindOne(ctx, bson.M{"_id": goalID, "user_id": userID}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": g.ID, "user_id": g.UserID}, g)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, userID, goalID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": goalID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// ListByUser returns the user's goals in creation order, which the service
// layer relies on as the stable tie-break for all sorts.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Goal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var goals []*domain.Goal
	if err := cur.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// CountCompleted aggregates completion counts for achievement evaluation.
func (r *GoalRepository) CountCompleted(ctx context.Context, userID string) (int64, map[domain.GoalCategory]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "completed": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category domain.GoalCategory `bson:"_id"`
		Count    int64               `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, nil, err
	}

	var total int64
	byCategory := make(map[domain.GoalCategory]int64, len(rows))
	for _, row := range rows {
		total += row.Count
		byCategory[row.Category] = row.Count
	}
	return total, byCategory, nil
}

// EnsureIndexes creates necessary indexes on the goals collection.
func (r *GoalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "completed", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
