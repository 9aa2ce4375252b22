package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

const collectionCarts = "carts"

// CartRepository implements ports.CartRepository on MongoDB. One document
// per user holds the whole line list; mutations replace the document
// (last-write-wins, accepted for this entity).
type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(collectionCarts)}
}

// Get returns the cart document, or an empty cart when none exists yet. An
// absent document and an empty cart render the same; the distinction is
// never surfaced.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var cart domain.Cart
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NewCart(userID), nil
		}
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return &cart, nil
}

// Put replaces the whole cart document, creating it when absent.
func (r *CartRepository) Put(ctx context.Context, cart *domain.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": cart.UserID}, cart, options.Replace().SetUpsert(true))
	return err
}
