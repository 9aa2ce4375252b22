package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates every index the collections rely on. Called once at
// startup; index creation is idempotent on the server side.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := NewGoalRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("goal indexes: %w", err)
	}
	if err := NewFavoriteRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("favorite indexes: %w", err)
	}
	if err := NewAuthRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}
