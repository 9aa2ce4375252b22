package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubLedgerRepo struct {
	byUser    map[string]*domain.ProgressLedger
	awardErr  error
	redeemErr error
	unlockErr error
	scanErr   error
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{byUser: make(map[string]*domain.ProgressLedger)}
}

func (r *stubLedgerRepo) GetOrInit(_ context.Context, userID string) (*domain.ProgressLedger, error) {
	if l, ok := r.byUser[userID]; ok {
		return l, nil
	}
	l := domain.NewLedger(userID, time.Now().UTC())
	r.byUser[userID] = l
	return l, nil
}

func (r *stubLedgerRepo) AwardPoints(_ context.Context, userID string, amount int64) error {
	if r.awardErr != nil {
		return r.awardErr
	}
	l, _ := r.GetOrInit(context.Background(), userID)
	l.TotalPoints += amount
	return nil
}

func (r *stubLedgerRepo) Redeem(_ context.Context, userID, rewardID string, cost int64) (*domain.ProgressLedger, error) {
	if r.redeemErr != nil {
		return nil, r.redeemErr
	}
	l, _ := r.GetOrInit(context.Background(), userID)
	if l.HasRedeemed(rewardID) {
		return nil, domain.ErrAlreadyRedeemed
	}
	if l.TotalPoints < cost {
		return nil, domain.ErrInsufficientPoints
	}
	l.TotalPoints -= cost
	l.RedeemedRewards = append(l.RedeemedRewards, rewardID)
	return l, nil
}

func (r *stubLedgerRepo) RecordUnlock(_ context.Context, userID, achievementID string) error {
	if r.unlockErr != nil {
		return r.unlockErr
	}
	l, _ := r.GetOrInit(context.Background(), userID)
	if !l.HasUnlocked(achievementID) {
		l.UnlockedAchievements = append(l.UnlockedAchievements, achievementID)
	}
	return nil
}

func (r *stubLedgerRepo) RecordScan(_ context.Context, userID string, co2Kg float64, points int64) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	l, _ := r.GetOrInit(context.Background(), userID)
	l.ScanCount++
	l.CO2TrackedKg += co2Kg
	l.TotalPoints += points
	return nil
}

func (r *stubLedgerRepo) Reset(_ context.Context, userID string) error {
	r.byUser[userID] = domain.NewLedger(userID, time.Now().UTC())
	return nil
}

type stubGoalRepo struct {
	byID      map[string]*domain.Goal
	order     []string
	insertErr error
	updateErr error
	countErr  error
	updated   []string
}

func newStubGoalRepo() *stubGoalRepo {
	return &stubGoalRepo{byID: make(map[string]*domain.Goal)}
}

func (r *stubGoalRepo) Insert(_ context.Context, g *domain.Goal) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.byID[g.ID] = g
	r.order = append(r.order, g.ID)
	return nil
}

func (r *stubGoalRepo) FindByID(_ context.Context, userID, goalID string) (*domain.Goal, error) {
	g, ok := r.byID[goalID]
	if !ok || g.UserID != userID {
		return nil, domain.ErrGoalNotFound
	}
	return g, nil
}

func (r *stubGoalRepo) Update(_ context.Context, g *domain.Goal) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[g.ID]; !ok {
		return domain.ErrGoalNotFound
	}
	r.byID[g.ID] = g
	r.updated = append(r.updated, g.ID)
	return nil
}

func (r *stubGoalRepo) Delete(_ context.Context, userID, goalID string) error {
	g, ok := r.byID[goalID]
	if !ok || g.UserID != userID {
		return domain.ErrGoalNotFound
	}
	delete(r.byID, goalID)
	for i, id := range r.order {
		if id == goalID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *stubGoalRepo) ListByUser(_ context.Context, userID string) ([]*domain.Goal, error) {
	var out []*domain.Goal
	for _, id := range r.order {
		if g := r.byID[id]; g != nil && g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *stubGoalRepo) CountCompleted(_ context.Context, userID string) (int64, map[domain.GoalCategory]int64, error) {
	if r.countErr != nil {
		return 0, nil, r.countErr
	}
	var total int64
	byCategory := make(map[domain.GoalCategory]int64)
	for _, g := range r.byID {
		if g.UserID == userID && g.Completed {
			total++
			byCategory[g.Category]++
		}
	}
	return total, byCategory, nil
}

type stubGuard struct {
	claimed    map[string]bool
	acquireErr error
	released   []string
}

func newStubGuard() *stubGuard {
	return &stubGuard{claimed: make(map[string]bool)}
}

func (g *stubGuard) Acquire(_ context.Context, key string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, key string) error {
	delete(g.claimed, key)
	g.released = append(g.released, key)
	return nil
}

func newLedgerSvc(ledgers *stubLedgerRepo, goals *stubGoalRepo, guard *stubGuard) *LedgerService {
	return NewLedgerService(ledgers, goals, guard, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLedgerService_GetLedger_LazyInit(t *testing.T) {
	svc := newLedgerSvc(newStubLedgerRepo(), newStubGoalRepo(), newStubGuard())

	snap, err := svc.GetLedger(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TotalPoints != 0 || snap.ScanCount != 0 {
		t.Errorf("expected zero-state ledger, got %+v", snap)
	}
	if snap.Level != 1 {
		t.Errorf("expected level 1 at zero points, got %d", snap.Level)
	}
	if snap.UnlockedAchievements == nil || snap.RedeemedRewards == nil {
		t.Error("expected empty slices, not nil")
	}
}

func TestLedgerService_GetLedger_RequiresIdentity(t *testing.T) {
	svc := newLedgerSvc(newStubLedgerRepo(), newStubGoalRepo(), newStubGuard())

	if _, err := svc.GetLedger(context.Background(), ""); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got: %v", err)
	}
}

func TestLedgerService_AwardPoints_IncrementsAndUnlocks(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	if err := svc.AwardPoints(context.Background(), "user_1", 600, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l := repo.byUser["user_1"]
	if l.TotalPoints != 600 {
		t.Errorf("expected 600 points, got %d", l.TotalPoints)
	}
	// 600 points crosses the points_500 threshold.
	if !l.HasUnlocked("points_500") {
		t.Error("expected points_500 to be pinned after award")
	}
	if l.HasUnlocked("points_2000") {
		t.Error("points_2000 should not unlock at 600 points")
	}
}

func TestLedgerService_AwardPoints_RejectsNonPositive(t *testing.T) {
	svc := newLedgerSvc(newStubLedgerRepo(), newStubGoalRepo(), newStubGuard())

	if err := svc.AwardPoints(context.Background(), "user_1", 0, "test"); err == nil {
		t.Error("expected error for zero amount")
	}
	if err := svc.AwardPoints(context.Background(), "user_1", -10, "test"); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestLedgerService_AwardPointsOnce_SecondCallSkipped(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	awarded, err := svc.AwardPointsOnce(context.Background(), "user_1", 50, "goal:g1", "goal_completed")
	if err != nil || !awarded {
		t.Fatalf("expected first award to succeed, awarded=%v err=%v", awarded, err)
	}

	awarded, err = svc.AwardPointsOnce(context.Background(), "user_1", 50, "goal:g1", "goal_completed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awarded {
		t.Error("expected second award with same key to be skipped")
	}
	if got := repo.byUser["user_1"].TotalPoints; got != 50 {
		t.Errorf("expected 50 points total, got %d", got)
	}
}

func TestLedgerService_AwardPointsOnce_ReleasesKeyOnWriteFailure(t *testing.T) {
	repo := newStubLedgerRepo()
	repo.awardErr = errors.New("mongo unavailable")
	guard := newStubGuard()
	svc := newLedgerSvc(repo, newStubGoalRepo(), guard)

	if _, err := svc.AwardPointsOnce(context.Background(), "user_1", 50, "goal:g1", "goal_completed"); err == nil {
		t.Fatal("expected error when the ledger write fails")
	}
	if len(guard.released) != 1 || guard.released[0] != "goal:g1" {
		t.Errorf("expected guard key released for retry, got: %v", guard.released)
	}
}

func TestLedgerService_Redeem_HappyPath(t *testing.T) {
	repo := newStubLedgerRepo()
	repo.byUser["user_1"] = &domain.ProgressLedger{UserID: "user_1", TotalPoints: 300}
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	res, err := svc.Redeem(context.Background(), "user_1", "plant_tree")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cost != 250 || res.TotalPoints != 50 {
		t.Errorf("expected 300-250=50 points remaining, got %+v", res)
	}
	if !repo.byUser["user_1"].HasRedeemed("plant_tree") {
		t.Error("expected reward pinned in redeemed set")
	}
}

func TestLedgerService_Redeem_InsufficientPointsLeavesLedgerUnchanged(t *testing.T) {
	repo := newStubLedgerRepo()
	repo.byUser["user_1"] = &domain.ProgressLedger{UserID: "user_1", TotalPoints: 100}
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	_, err := svc.Redeem(context.Background(), "user_1", "plant_tree")
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got: %v", err)
	}
	if got := repo.byUser["user_1"].TotalPoints; got != 100 {
		t.Errorf("expected balance unchanged at 100, got %d", got)
	}
}

func TestLedgerService_Redeem_SecondRedeemRejected(t *testing.T) {
	repo := newStubLedgerRepo()
	repo.byUser["user_1"] = &domain.ProgressLedger{UserID: "user_1", TotalPoints: 1000}
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	if _, err := svc.Redeem(context.Background(), "user_1", "plant_tree"); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	_, err := svc.Redeem(context.Background(), "user_1", "plant_tree")
	if !errors.Is(err, domain.ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got: %v", err)
	}
	if got := repo.byUser["user_1"].TotalPoints; got != 750 {
		t.Errorf("expected only one deduction (750 remaining), got %d", got)
	}
}

func TestLedgerService_Redeem_UnknownReward(t *testing.T) {
	svc := newLedgerSvc(newStubLedgerRepo(), newStubGoalRepo(), newStubGuard())

	if _, err := svc.Redeem(context.Background(), "user_1", "solid_gold_yacht"); !errors.Is(err, domain.ErrRewardNotFound) {
		t.Errorf("expected ErrRewardNotFound, got: %v", err)
	}
}

func TestLedgerService_Achievements_ProgressAndPinning(t *testing.T) {
	repo := newStubLedgerRepo()
	repo.byUser["user_1"] = &domain.ProgressLedger{UserID: "user_1", TotalPoints: 499, ScanCount: 25}
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	statuses, err := svc.Achievements(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]ports.AchievementStatus)
	for _, s := range statuses {
		byID[s.ID] = s
	}

	// 499/500 rounds to one decimal place, never up to 100.
	if s := byID["points_500"]; s.Unlocked || s.Progress != 99.8 {
		t.Errorf("points_500: expected locked at 99.8, got %+v", s)
	}
	if s := byID["scanner_25"]; !s.Unlocked || s.Progress != 100 {
		t.Errorf("scanner_25: expected unlocked at 100, got %+v", s)
	}
	if !repo.byUser["user_1"].HasUnlocked("scanner_25") {
		t.Error("expected fresh unlock pinned on the ledger")
	}
}

func TestLedgerService_Achievements_PinnedUnlockSurvivesMetricRegression(t *testing.T) {
	repo := newStubLedgerRepo()
	// Unlocked at some point in the past; the points were later spent.
	repo.byUser["user_1"] = &domain.ProgressLedger{
		UserID:               "user_1",
		TotalPoints:          10,
		UnlockedAchievements: []string{"points_500"},
	}
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	statuses, err := svc.Achievements(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range statuses {
		if s.ID == "points_500" {
			if !s.Unlocked || s.Progress != 100 {
				t.Errorf("pinned unlock must stay unlocked at 100, got %+v", s)
			}
			return
		}
	}
	t.Fatal("points_500 missing from status list")
}

func TestLedgerService_Achievements_GoalCountsUnavailableIsNonFatal(t *testing.T) {
	repo := newStubLedgerRepo()
	goals := newStubGoalRepo()
	goals.countErr = errors.New("aggregation timeout")
	svc := newLedgerSvc(repo, goals, newStubGuard())

	statuses, err := svc.Achievements(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("expected goal count failure to be non-fatal, got: %v", err)
	}
	for _, s := range statuses {
		if s.ID == "goal_first" && (s.Unlocked || s.Progress != 0) {
			t.Errorf("goal_first should read as zero progress, got %+v", s)
		}
	}
}

func TestLedgerService_ResetLedger_ZeroesEverything(t *testing.T) {
	repo := newStubLedgerRepo()
	repo.byUser["user_1"] = &domain.ProgressLedger{
		UserID:               "user_1",
		TotalPoints:          1200,
		ScanCount:            40,
		CO2TrackedKg:         12.5,
		UnlockedAchievements: []string{"first_scan", "points_500"},
		RedeemedRewards:      []string{"plant_tree"},
	}
	svc := newLedgerSvc(repo, newStubGoalRepo(), newStubGuard())

	if err := svc.ResetLedger(context.Background(), "user_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := repo.byUser["user_1"]
	if l.TotalPoints != 0 || l.ScanCount != 0 || l.CO2TrackedKg != 0 {
		t.Errorf("expected zeroed counters, got %+v", l)
	}
	if len(l.UnlockedAchievements) != 0 || len(l.RedeemedRewards) != 0 {
		t.Errorf("expected emptied sets, got %+v", l)
	}
}
