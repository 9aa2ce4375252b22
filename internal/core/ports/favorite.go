package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// FavoriteRepository persists one document per (user, product) favorite.
type FavoriteRepository interface {
	// Put stores the favorite, reporting whether it was newly created
	// (false when the product was already favorited).
	Put(ctx context.Context, fav *domain.Favorite) (created bool, err error)
	// Delete removes the favorite, reporting whether one existed.
	Delete(ctx context.Context, userID, productID string) (removed bool, err error)
	List(ctx context.Context, userID string) ([]*domain.Favorite, error)
}

// FavoriteInput carries the product snapshot captured when favoriting.
type FavoriteInput struct {
	ProductID string
	Name      string
	Price     float64
	Image     string
}

// FavoriteService defines the favorite toggle intents. Favoriting a product
// for the first time awards points; toggling off and on again never awards
// twice for the same product.
type FavoriteService interface {
	Favorite(ctx context.Context, userID string, input FavoriteInput) (*domain.Favorite, error)
	Unfavorite(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]*domain.Favorite, error)
}
