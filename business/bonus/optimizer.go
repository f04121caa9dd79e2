package bonus

import (
	"context"
	"fmt"
	"sort"

	"playerEngagement/domain"
)

// RankBonuses scores every bonus a player's segment can see and returns them
// in descending score order. Inappropriate bonuses stay in the list with the
// flat ineligible score so they never outrank a genuinely scored candidate.
func (s *Service) RankBonuses(ctx context.Context, playerID uint) ([]domain.ScoredBonus, error) {
	features, err := s.features.Features(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	return s.rankForFeatures(ctx, features)
}

func (s *Service) rankForFeatures(ctx context.Context, features domain.PlayerFeatures) ([]domain.ScoredBonus, error) {
	candidates, err := s.ListBonusesForSegment(ctx, features.Segment)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	ranked := make([]domain.ScoredBonus, 0, len(candidates))
	for _, candidate := range candidates {
		score := ineligibleScore
		if IsAppropriate(features, candidate) {
			score = Score(features, candidate)
		}
		ranked = append(ranked, domain.ScoredBonus{
			Bonus: candidate,
			Score: score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

// GetOptimalBonus returns the single best appropriate bonus for the player,
// or ErrNoBonusAvailable when nothing qualifies. That is an ordinary outcome
// for the caller, not a failure.
func (s *Service) GetOptimalBonus(ctx context.Context, playerID uint) (domain.BonusRecommendation, error) {
	features, err := s.features.Features(ctx, playerID)
	if err != nil {
		return domain.BonusRecommendation{}, fmt.Errorf("load features: %w", err)
	}

	ranked, err := s.rankForFeatures(ctx, features)
	if err != nil {
		return domain.BonusRecommendation{}, err
	}

	for _, candidate := range ranked {
		if !IsAppropriate(features, candidate.Bonus) {
			continue
		}
		return domain.BonusRecommendation{
			Bonus:  candidate.Bonus,
			Score:  candidate.Score,
			Reason: fmt.Sprintf("top ranked for segment %s", features.Segment),
		}, nil
	}

	return domain.BonusRecommendation{}, ErrNoBonusAvailable
}

// IsBonusAppropriate answers the eligibility gate for one (player, bonus)
// pair without ranking.
func (s *Service) IsBonusAppropriate(ctx context.Context, playerID uint, bonusID uint64) (bool, error) {
	features, err := s.features.Features(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("load features: %w", err)
	}

	bonus, err := s.GetBonus(ctx, bonusID)
	if err != nil {
		return false, err
	}

	return IsAppropriate(features, bonus), nil
}
