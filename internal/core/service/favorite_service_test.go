package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubFavoriteRepo struct {
	byKey  map[string]*domain.Favorite
	putErr error
}

func newStubFavoriteRepo() *stubFavoriteRepo {
	return &stubFavoriteRepo{byKey: make(map[string]*domain.Favorite)}
}

func favKey(userID, productID string) string { return userID + "/" + productID }

func (r *stubFavoriteRepo) Put(_ context.Context, fav *domain.Favorite) (bool, error) {
	if r.putErr != nil {
		return false, r.putErr
	}
	key := favKey(fav.UserID, fav.ProductID)
	if _, exists := r.byKey[key]; exists {
		return false, nil
	}
	r.byKey[key] = fav
	return true, nil
}

func (r *stubFavoriteRepo) Delete(_ context.Context, userID, productID string) (bool, error) {
	key := favKey(userID, productID)
	if _, exists := r.byKey[key]; !exists {
		return false, nil
	}
	delete(r.byKey, key)
	return true, nil
}

func (r *stubFavoriteRepo) List(_ context.Context, userID string) ([]*domain.Favorite, error) {
	var out []*domain.Favorite
	for _, f := range r.byKey {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func newFavoriteSvc(repo *stubFavoriteRepo, ledger *stubLedgerService) *FavoriteService {
	return NewFavoriteService(repo, ledger, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestFavoriteService_Favorite_FirstToggleAwards(t *testing.T) {
	ledger := newStubLedgerService()
	svc := newFavoriteSvc(newStubFavoriteRepo(), ledger)

	fav, err := svc.Favorite(context.Background(), "user_1", ports.FavoriteInput{ProductID: "p_soap", Name: "Olive Soap"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fav.ProductID != "p_soap" {
		t.Errorf("unexpected favorite: %+v", fav)
	}
	if len(ledger.onceAwards) != 1 || ledger.onceAwards[0] != "favorite:user_1:p_soap" {
		t.Errorf("expected one award keyed by user and product, got: %v", ledger.onceAwards)
	}
}

func TestFavoriteService_Favorite_RepeatIsNoAwardNoError(t *testing.T) {
	ledger := newStubLedgerService()
	svc := newFavoriteSvc(newStubFavoriteRepo(), ledger)
	ctx := context.Background()

	in := ports.FavoriteInput{ProductID: "p_soap", Name: "Olive Soap"}
	if _, err := svc.Favorite(ctx, "user_1", in); err != nil {
		t.Fatalf("first favorite failed: %v", err)
	}
	if _, err := svc.Favorite(ctx, "user_1", in); err != nil {
		t.Fatalf("repeat favorite must succeed, got: %v", err)
	}
	if len(ledger.onceAwards) != 1 {
		t.Errorf("repeat favorite must not attempt a second award, got: %v", ledger.onceAwards)
	}
}

func TestFavoriteService_ToggleOffAndOnNeverReAwards(t *testing.T) {
	ledger := newStubLedgerService()
	svc := newFavoriteSvc(newStubFavoriteRepo(), ledger)
	ctx := context.Background()

	in := ports.FavoriteInput{ProductID: "p_soap", Name: "Olive Soap"}
	_, _ = svc.Favorite(ctx, "user_1", in)
	if err := svc.Unfavorite(ctx, "user_1", "p_soap"); err != nil {
		t.Fatalf("unfavorite failed: %v", err)
	}
	_, _ = svc.Favorite(ctx, "user_1", in)

	// Both attempts carry the same event key; the ledger guard makes the
	// second a no-op.
	for _, key := range ledger.onceAwards {
		if key != "favorite:user_1:p_soap" {
			t.Errorf("unexpected award key: %s", key)
		}
	}
}

func TestFavoriteService_Unfavorite_MissingIsNoError(t *testing.T) {
	svc := newFavoriteSvc(newStubFavoriteRepo(), newStubLedgerService())

	if err := svc.Unfavorite(context.Background(), "user_1", "p_never"); err != nil {
		t.Errorf("unfavorite on missing favorite must be a no-op, got: %v", err)
	}
}

func TestFavoriteService_List_ScopedToUser(t *testing.T) {
	repo := newStubFavoriteRepo()
	svc := newFavoriteSvc(repo, newStubLedgerService())
	ctx := context.Background()

	_, _ = svc.Favorite(ctx, "user_1", ports.FavoriteInput{ProductID: "p_soap"})
	_, _ = svc.Favorite(ctx, "user_2", ports.FavoriteInput{ProductID: "p_bag"})

	favs, err := svc.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(favs) != 1 || favs[0].ProductID != "p_soap" {
		t.Errorf("expected only user_1 favorites, got %+v", favs)
	}
}
