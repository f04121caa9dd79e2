package bonus

import (
	"context"
	"errors"
	"testing"

	"playerEngagement/domain"

	"gorm.io/datatypes"
)

func TestRankBonuses_IneligibleNeverOutranksScored(t *testing.T) {
	f := newFixture()
	f.features.features = domain.PlayerFeatures{
		Segment:                domain.SegmentRegular,
		FavoriteGameType:       domain.GameTypeTable,
		WageringCompletionRate: 0.5,
		BonusUsageRate:         0.5,
	}

	// eligible for a table player
	f.addBonus(activeBonus(1, domain.BonusCashback))
	// free spins are inappropriate for table players
	f.addBonus(activeBonus(2, domain.BonusFreeSpins))

	ranked, err := f.service.RankBonuses(context.Background(), 1)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ranked))
	}

	if ranked[0].Bonus.ID != 1 {
		t.Fatalf("eligible bonus must rank first, got bonus %d", ranked[0].Bonus.ID)
	}
	if ranked[1].Score != ineligibleScore {
		t.Fatalf("inappropriate bonus must carry the flat score, got %v", ranked[1].Score)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatal("ranking must be descending")
	}
}

func TestRankBonuses_SegmentUnionIncludesGlobal(t *testing.T) {
	f := newFixture()
	f.features.features.Segment = domain.SegmentVIP

	global := activeBonus(1, domain.BonusCashback)
	f.addBonus(global)

	targeted := activeBonus(2, domain.BonusCashback)
	targeted.TargetSegments = datatypes.NewJSONSlice([]domain.Segment{domain.SegmentVIP})
	f.addBonus(targeted)

	other := activeBonus(3, domain.BonusCashback)
	other.TargetSegments = datatypes.NewJSONSlice([]domain.Segment{domain.SegmentDormant})
	f.addBonus(other)

	ranked, err := f.service.RankBonuses(context.Background(), 1)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected global + vip-targeted, got %d candidates", len(ranked))
	}
	for _, sb := range ranked {
		if sb.Bonus.ID == 3 {
			t.Fatal("bonus targeting another segment must be excluded")
		}
	}
}

func TestGetOptimalBonus_PicksTopAppropriate(t *testing.T) {
	f := newFixture()
	preferred := domain.BonusCashback
	f.features.features = domain.PlayerFeatures{
		Segment:            domain.SegmentVIP,
		FavoriteGameType:   domain.GameTypeSlot,
		PreferredBonusType: &preferred,
		BonusUsageRate:     0.5,
	}

	f.addBonus(activeBonus(1, domain.BonusNoDeposit))
	f.addBonus(activeBonus(2, domain.BonusCashback)) // preferred type scores higher

	optimal, err := f.service.GetOptimalBonus(context.Background(), 1)
	if err != nil {
		t.Fatalf("optimal failed: %v", err)
	}
	if optimal.Bonus.ID != 2 {
		t.Fatalf("expected the preferred-type bonus, got %d", optimal.Bonus.ID)
	}
	if optimal.Reason == "" {
		t.Fatal("optimal pick must explain itself")
	}
	if f.features.calls != 1 {
		t.Fatalf("expected a single feature load, got %d", f.features.calls)
	}
}

func TestGetOptimalBonus_NoneAppropriate(t *testing.T) {
	f := newFixture()
	f.features.features = domain.PlayerFeatures{
		Segment:          domain.SegmentRegular,
		FavoriteGameType: domain.GameTypeTable,
	}

	// only a free spins bonus exists; table players never qualify
	f.addBonus(activeBonus(1, domain.BonusFreeSpins))

	_, err := f.service.GetOptimalBonus(context.Background(), 1)
	if !errors.Is(err, ErrNoBonusAvailable) {
		t.Fatalf("expected ErrNoBonusAvailable, got %v", err)
	}
}

func TestIsBonusAppropriate(t *testing.T) {
	f := newFixture()
	f.features.features = domain.PlayerFeatures{
		Segment:          domain.SegmentRegular,
		FavoriteGameType: domain.GameTypeSlot,
	}

	f.addBonus(activeBonus(1, domain.BonusFreeSpins))

	ok, err := f.service.IsBonusAppropriate(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !ok {
		t.Fatal("slot player should qualify for free spins")
	}

	f.features.features.FavoriteGameType = domain.GameTypeSports
	ok, err = f.service.IsBonusAppropriate(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if ok {
		t.Fatal("sports player should not qualify for free spins")
	}
}
