package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// FavoriteService implements the favorite toggle intents. Toggling a
// product on awards points through the ledger's at-most-once path; toggling
// off never deducts and a later re-toggle never re-awards.
type FavoriteService struct {
	repo   ports.FavoriteRepository
	ledger ports.LedgerService
	log    zerolog.Logger
}

func NewFavoriteService(repo ports.FavoriteRepository, ledger ports.LedgerService, log zerolog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, ledger: ledger, log: log}
}

// Favorite stores the product snapshot. Re-favoriting an already favorited
// product is a no-op.
func (s *FavoriteService) Favorite(ctx context.Context, userID string, input ports.FavoriteInput) (*domain.Favorite, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	fav := &domain.Favorite{
		UserID:    userID,
		ProductID: input.ProductID,
		Name:      input.Name,
		Price:     input.Price,
		Image:     input.Image,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.repo.Put(ctx, fav)
	if err != nil {
		return nil, fmt.Errorf("favorite: %w", err)
	}

	if created {
		eventKey := "favorite:" + userID + ":" + input.ProductID
		if _, err := s.ledger.AwardPointsOnce(ctx, userID, domain.PointsPerFavorite, eventKey, "favorite"); err != nil {
			s.log.Warn().Err(err).Str("product_id", input.ProductID).Msg("favorite award failed")
		}
	}
	return fav, nil
}

// Unfavorite removes the document. Points are never deducted on toggle-off.
func (s *FavoriteService) Unfavorite(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	removed, err := s.repo.Delete(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("unfavorite: %w", err)
	}
	if !removed {
		s.log.Debug().Str("user_id", userID).Str("product_id", productID).Msg("unfavorite on missing favorite")
	}
	return nil
}

// List returns all of the user's favorites.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	favs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}
