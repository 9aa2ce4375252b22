package ports

import (
	"context"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// CartRepository persists the single per-user cart document.
type CartRepository interface {
	// Get returns the user's cart, or an empty cart when no document
	// exists yet.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Put replaces the whole cart document (last-write-wins).
	Put(ctx context.Context, cart *domain.Cart) error
}

// AddCartItemInput carries the product snapshot captured at add time.
type AddCartItemInput struct {
	ProductID string
	Name      string
	Price     float64
	Image     string
}

// CartService defines the cart mutation intents. All mutations are
// read-modify-write over the single cart document; concurrent edits from
// multiple devices resolve by last-write-wins.
type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Add(ctx context.Context, userID string, item AddCartItemInput) (*domain.Cart, error)
	// SetQuantity replaces a line's quantity; qty <= 0 removes the line. A
	// missing product id is a logged no-op, never a silent line creation.
	SetQuantity(ctx context.Context, userID, productID string, qty int64) (*domain.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}
