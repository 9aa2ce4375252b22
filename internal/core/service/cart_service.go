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

// CartService implements the cart intents over the single per-user cart
// document. Mutations read the current document, apply the change in
// memory, and write the whole line list back; last-write-wins between
// devices is accepted for this entity.
type CartService struct {
	repo   ports.CartRepository
	ledger ports.LedgerService
	log    zerolog.Logger
}

func NewCartService(repo ports.CartRepository, ledger ports.LedgerService, log zerolog.Logger) *CartService {
	return &CartService{repo: repo, ledger: ledger, log: log}
}

// Get returns the cart, empty when no document exists.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Add increments an existing line or appends a new one with quantity 1.
// The first time a product enters the cart the user is awarded points, at
// most once per product regardless of later removals and re-adds.
func (s *CartService) Add(ctx context.Context, userID string, item ports.AddCartItemInput) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	added := cart.Add(domain.CartLine{
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Image:     item.Image,
	})
	if err := s.put(ctx, cart, "add"); err != nil {
		return nil, err
	}

	if added {
		eventKey := "cart:" + userID + ":" + item.ProductID
		if _, err := s.ledger.AwardPointsOnce(ctx, userID, domain.PointsPerCartAdd, eventKey, "cart_add"); err != nil {
			s.log.Warn().Err(err).Str("product_id", item.ProductID).Msg("cart add award failed")
		}
	}
	return cart, nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line. A
// missing product id is a logged no-op so the call can never create a line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, qty int64) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found := cart.SetQuantity(productID, qty); !found {
		s.log.Warn().Str("user_id", userID).Str("product_id", productID).Msg("set quantity on missing cart line, ignoring")
		return cart, nil
	}
	if err := s.put(ctx, cart, "set_quantity"); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove filters the line out. Writing back an empty list is a valid empty
// cart, not a deleted one.
func (s *CartService) Remove(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found := cart.Remove(productID); !found {
		return cart, nil
	}
	if err := s.put(ctx, cart, "remove"); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear writes back an empty line list unconditionally.
func (s *CartService) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	cart := domain.NewCart(userID)
	if err := s.put(ctx, cart, "clear"); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) put(ctx context.Context, cart *domain.Cart, op string) error {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.repo.Put(ctx, cart); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	metrics.CartMutationsTotal.WithLabelValues(op).Inc()
	return nil
}
