package bonus

import (
	"context"
	"errors"
	"testing"
	"time"

	"playerEngagement/domain"
	"playerEngagement/pkg/cache"
	"playerEngagement/pkg/config"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ---- fakes ----

type memStore struct {
	data    map[string][]byte
	deletes int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

type fakeBonusRepo struct {
	bonuses map[uint64]domain.Bonus
}

func (r *fakeBonusRepo) Create(_ context.Context, b *domain.Bonus) error {
	b.ID = uint64(len(r.bonuses) + 1)
	r.bonuses[b.ID] = *b
	return nil
}

func (r *fakeBonusRepo) FindByID(_ context.Context, id uint64) (domain.Bonus, error) {
	b, ok := r.bonuses[id]
	if !ok {
		return domain.Bonus{}, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *fakeBonusRepo) FindActive(_ context.Context, now time.Time) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.bonuses {
		if b.IsActive && b.WithinValidity(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) FindByType(_ context.Context, t domain.BonusType, now time.Time) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.bonuses {
		if b.Type == t && b.IsActive && b.WithinValidity(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) FindBySegment(_ context.Context, seg domain.Segment, now time.Time) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.bonuses {
		if len(b.TargetSegments) == 0 || !b.IsActive || !b.WithinValidity(now) {
			continue
		}
		if b.TargetsSegment(seg) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) FindGlobal(_ context.Context, now time.Time) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.bonuses {
		if len(b.TargetSegments) == 0 && b.IsActive && b.WithinValidity(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) FindByGame(_ context.Context, gameID uint64, now time.Time) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.bonuses {
		if b.AppliesToGame(gameID) && b.IsActive && b.WithinValidity(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) Update(_ context.Context, b *domain.Bonus) error {
	if _, ok := r.bonuses[b.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.bonuses[b.ID] = *b
	return nil
}

func (r *fakeBonusRepo) Deactivate(_ context.Context, id uint64) error {
	b, ok := r.bonuses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.IsActive = false
	r.bonuses[id] = b
	return nil
}

type fakeClaimRepo struct {
	claims map[uint]domain.BonusClaim
	nextID uint
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{claims: make(map[uint]domain.BonusClaim), nextID: 1}
}

func (r *fakeClaimRepo) Create(_ context.Context, claim *domain.BonusClaim) error {
	claim.ID = r.nextID
	r.nextID++
	r.claims[claim.ID] = *claim
	return nil
}

func (r *fakeClaimRepo) FindByID(_ context.Context, id uint) (domain.BonusClaim, error) {
	c, ok := r.claims[id]
	if !ok {
		return domain.BonusClaim{}, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeClaimRepo) FindByPlayer(_ context.Context, playerID uint) ([]domain.BonusClaim, error) {
	var out []domain.BonusClaim
	for _, c := range r.claims {
		if c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClaimRepo) FindNonTerminal(_ context.Context, playerID uint, bonusID uint64) (domain.BonusClaim, bool, error) {
	for _, c := range r.claims {
		if c.PlayerID == playerID && c.BonusID == bonusID && !c.Status.IsTerminal() {
			return c, true, nil
		}
	}
	return domain.BonusClaim{}, false, nil
}

func (r *fakeClaimRepo) Save(_ context.Context, claim *domain.BonusClaim) error {
	if _, ok := r.claims[claim.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.claims[claim.ID] = *claim
	return nil
}

func (r *fakeClaimRepo) ExpireOverdue(_ context.Context, now time.Time) ([]uint, error) {
	var players []uint
	for id, c := range r.claims {
		if !c.Status.IsTerminal() && now.After(c.ExpiryDate) {
			c.Status = domain.ClaimStatusExpired
			r.claims[id] = c
			players = append(players, c.PlayerID)
		}
	}
	return players, nil
}

type fakePlayerRepo struct {
	players map[uint]domain.Player
}

func (r *fakePlayerRepo) FindByID(_ context.Context, id uint) (domain.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return domain.Player{}, gorm.ErrRecordNotFound
	}
	return p, nil
}

type fakeDepositRepo struct {
	deposits []domain.Deposit
}

func (r *fakeDepositRepo) Create(_ context.Context, d *domain.Deposit) error {
	d.ID = uint64(len(r.deposits) + 1)
	r.deposits = append(r.deposits, *d)
	return nil
}

type fakeFeatures struct {
	features domain.PlayerFeatures
	err      error
	calls    int
}

func (f *fakeFeatures) Features(_ context.Context, _ uint) (domain.PlayerFeatures, error) {
	f.calls++
	return f.features, f.err
}

type fixture struct {
	service  *Service
	bonuses  *fakeBonusRepo
	claims   *fakeClaimRepo
	players  *fakePlayerRepo
	deposits *fakeDepositRepo
	features *fakeFeatures
	store    *memStore
}

func newFixture() *fixture {
	bonuses := &fakeBonusRepo{bonuses: make(map[uint64]domain.Bonus)}
	claims := newFakeClaimRepo()
	players := &fakePlayerRepo{players: make(map[uint]domain.Player)}
	deposits := &fakeDepositRepo{}
	features := &fakeFeatures{features: baseFeatures()}
	store := newMemStore()

	cacheCfg := config.CacheConfig{
		BonusTTL:          time.Minute,
		BonusListTTL:      time.Minute,
		PlayerClaimsTTL:   time.Minute,
		PlayerTTL:         time.Minute,
		PlayerFeaturesTTL: time.Minute,
		RecommendationTTL: time.Minute,
	}

	svc := NewService(bonuses, claims, players, deposits, features,
		cache.NewAside(store), cacheCfg, config.BonusConfig{ClaimValidityDays: 7})

	return &fixture{
		service:  svc,
		bonuses:  bonuses,
		claims:   claims,
		players:  players,
		deposits: deposits,
		features: features,
		store:    store,
	}
}

func (f *fixture) addPlayer(id uint, segment domain.Segment) {
	f.players.players[id] = domain.Player{ID: id, Segment: segment}
}

func (f *fixture) addBonus(b domain.Bonus) domain.Bonus {
	if b.ID == 0 {
		b.ID = uint64(len(f.bonuses.bonuses) + 1)
	}
	f.bonuses.bonuses[b.ID] = b
	return b
}

func activeBonus(id uint64, t domain.BonusType) domain.Bonus {
	return domain.Bonus{
		ID:       id,
		Name:     "test bonus",
		Type:     t,
		Amount:   100,
		IsActive: true,
	}
}

// ---- tests ----

func TestClaimBonus_InstantBonusStartsActive(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claim.Status != domain.ClaimStatusActive {
		t.Fatalf("instant bonus should start active, got %s", claim.Status)
	}
	if claim.Reference == "" {
		t.Fatal("claim must carry a reference")
	}
	if claim.WageringProgress != nil {
		t.Fatal("bonus without wagering must not track progress")
	}
}

func TestClaimBonus_DepositBonusStartsClaimed(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusDepositMatch)
	b.MinimumDeposit = fptr(50)
	b.WageringRequirement = fptr(20)
	f.addBonus(b)

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claim.Status != domain.ClaimStatusClaimed {
		t.Fatalf("deposit bonus should start claimed, got %s", claim.Status)
	}
	if claim.WageringProgress == nil || *claim.WageringProgress != 0 {
		t.Fatal("wagering bonus must start tracking progress at zero")
	}
}

func TestClaimBonus_DuplicateOpenClaimRejected(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))

	if _, err := f.service.ClaimBonus(context.Background(), 1, 1); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if len(f.claims.claims) != 1 {
		t.Fatalf("rejected claim must not persist, have %d claims", len(f.claims.claims))
	}
}

func TestClaimBonus_TerminalClaimAllowsReclaim(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))

	first, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	done := f.claims.claims[first.ID]
	done.Status = domain.ClaimStatusCompleted
	f.claims.claims[first.ID] = done

	if _, err := f.service.ClaimBonus(context.Background(), 1, 1); err != nil {
		t.Fatalf("reclaim after completion should pass: %v", err)
	}
}

func TestClaimBonus_InactiveBonusRejected(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusNoDeposit)
	b.IsActive = false
	f.addBonus(b)

	_, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if !errors.Is(err, ErrBonusInactive) {
		t.Fatalf("expected ErrBonusInactive, got %v", err)
	}
	if len(f.claims.claims) != 0 {
		t.Fatal("rejected claim must not persist")
	}
	if f.store.deletes != 0 {
		t.Fatalf("rejected claim must not touch the cache, saw %d deletes", f.store.deletes)
	}
}

func TestClaimBonus_ExpiredValidityRejected(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusNoDeposit)
	b.ValidUntil = time.Now().Add(-time.Hour)
	f.addBonus(b)

	_, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if !errors.Is(err, ErrBonusInactive) {
		t.Fatalf("expected ErrBonusInactive, got %v", err)
	}
}

func TestClaimBonus_SegmentNotTargeted(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentNew)
	b := activeBonus(1, domain.BonusNoDeposit)
	b.TargetSegments = datatypes.NewJSONSlice([]domain.Segment{domain.SegmentVIP})
	f.addBonus(b)

	_, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if !errors.Is(err, ErrSegmentNotTargeted) {
		t.Fatalf("expected ErrSegmentNotTargeted, got %v", err)
	}
}

func TestClaimBonus_UnknownPlayer(t *testing.T) {
	f := newFixture()
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))

	_, err := f.service.ClaimBonus(context.Background(), 99, 1)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestConfirmDeposit_ActivatesClaim(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusDepositMatch)
	b.MinimumDeposit = fptr(50)
	f.addBonus(b)

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	updated, err := f.service.ConfirmDeposit(context.Background(), claim.ID, 75)
	if err != nil {
		t.Fatalf("confirm deposit failed: %v", err)
	}
	if updated.Status != domain.ClaimStatusActive {
		t.Fatalf("expected active claim, got %s", updated.Status)
	}
	if len(f.deposits.deposits) != 1 || f.deposits.deposits[0].Amount != 75 {
		t.Fatal("deposit row must be recorded")
	}
}

func TestConfirmDeposit_BelowMinimumRejected(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusDepositMatch)
	b.MinimumDeposit = fptr(50)
	f.addBonus(b)

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	_, err = f.service.ConfirmDeposit(context.Background(), claim.ID, 10)
	if !errors.Is(err, ErrDepositTooLow) {
		t.Fatalf("expected ErrDepositTooLow, got %v", err)
	}
	if len(f.deposits.deposits) != 0 {
		t.Fatal("rejected deposit must not be recorded")
	}
	if f.claims.claims[claim.ID].Status != domain.ClaimStatusClaimed {
		t.Fatal("claim must stay pending after a rejected deposit")
	}
}

func TestConfirmDeposit_ActiveClaimRejected(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	_, err = f.service.ConfirmDeposit(context.Background(), claim.ID, 75)
	if !errors.Is(err, ErrDepositNotExpected) {
		t.Fatalf("expected ErrDepositNotExpected, got %v", err)
	}
}

func TestUpdateWageringProgress_Monotonic(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusNoDeposit)
	b.WageringRequirement = fptr(200)
	f.addBonus(b)

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if _, err := f.service.UpdateWageringProgress(context.Background(), claim.ID, 50); err != nil {
		t.Fatalf("progress update failed: %v", err)
	}

	_, err = f.service.UpdateWageringProgress(context.Background(), claim.ID, 30)
	if !errors.Is(err, ErrProgressConflict) {
		t.Fatalf("expected ErrProgressConflict, got %v", err)
	}

	stored := f.claims.claims[claim.ID]
	if *stored.WageringProgress != 50 {
		t.Fatalf("conflicting update must not change stored progress, got %v", *stored.WageringProgress)
	}
}

func TestUpdateWageringProgress_CompletesAtTarget(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusNoDeposit)
	b.Amount = 100
	b.WageringRequirement = fptr(200) // target = 100 * 200 / 100 = 200
	f.addBonus(b)

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	updated, err := f.service.UpdateWageringProgress(context.Background(), claim.ID, 199)
	if err != nil {
		t.Fatalf("progress update failed: %v", err)
	}
	if updated.Status != domain.ClaimStatusActive {
		t.Fatalf("claim below target must stay active, got %s", updated.Status)
	}

	updated, err = f.service.UpdateWageringProgress(context.Background(), claim.ID, 200)
	if err != nil {
		t.Fatalf("progress update failed: %v", err)
	}
	if updated.Status != domain.ClaimStatusCompleted {
		t.Fatalf("claim at target must complete, got %s", updated.Status)
	}

	// completed claims accept no further updates
	_, err = f.service.UpdateWageringProgress(context.Background(), claim.ID, 300)
	if !errors.Is(err, ErrClaimNotOpen) {
		t.Fatalf("expected ErrClaimNotOpen, got %v", err)
	}
}

func TestUpdateWageringProgress_NoRequirement(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	_, err = f.service.UpdateWageringProgress(context.Background(), claim.ID, 10)
	if !errors.Is(err, ErrNoWageringRequired) {
		t.Fatalf("expected ErrNoWageringRequired, got %v", err)
	}
}

func TestLoadOpenClaim_LazyExpiry(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	b := activeBonus(1, domain.BonusNoDeposit)
	b.WageringRequirement = fptr(100)
	f.addBonus(b)

	claim, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	overdue := f.claims.claims[claim.ID]
	overdue.ExpiryDate = time.Now().Add(-time.Hour)
	f.claims.claims[claim.ID] = overdue

	_, err = f.service.UpdateWageringProgress(context.Background(), claim.ID, 10)
	if !errors.Is(err, ErrClaimExpired) {
		t.Fatalf("expected ErrClaimExpired, got %v", err)
	}
	if f.claims.claims[claim.ID].Status != domain.ClaimStatusExpired {
		t.Fatal("overdue claim must be marked expired on read")
	}
}

func TestExpireClaims_Sweep(t *testing.T) {
	f := newFixture()
	f.addPlayer(1, domain.SegmentRegular)
	f.addPlayer(2, domain.SegmentRegular)
	f.addBonus(activeBonus(1, domain.BonusNoDeposit))
	f.addBonus(activeBonus(2, domain.BonusCashback))

	c1, err := f.service.ClaimBonus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	c2, err := f.service.ClaimBonus(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	overdue := f.claims.claims[c1.ID]
	overdue.ExpiryDate = time.Now().Add(-time.Hour)
	f.claims.claims[c1.ID] = overdue

	expired, err := f.service.ExpireClaims(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired claim, got %d", expired)
	}
	if f.claims.claims[c1.ID].Status != domain.ClaimStatusExpired {
		t.Fatal("overdue claim must be expired")
	}
	if f.claims.claims[c2.ID].Status != domain.ClaimStatusActive {
		t.Fatal("fresh claim must stay active")
	}
}
