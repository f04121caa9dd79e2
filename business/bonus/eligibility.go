package bonus

import (
	"playerEngagement/domain"
)

const (
	// wagering requirements above this percentage only suit players who
	// historically finish their wagering
	highWageringThreshold     = 30.0
	highWageringMinCompletion = 0.3
)

// IsAppropriate decides eligibility of a bonus for a player's feature
// snapshot. Checks run in order and short-circuit on the first failure.
func IsAppropriate(features domain.PlayerFeatures, bonus domain.Bonus) bool {
	// 1) segment targeting
	if !bonus.TargetsSegment(features.Segment) {
		return false
	}

	// 2) deposit-match bonuses need a matching deposit habit
	if bonus.Type == domain.BonusDepositMatch && bonus.MinimumDeposit != nil {
		if features.AverageDepositAmount < *bonus.MinimumDeposit {
			return false
		}
	}

	// 3) free spins only make sense for slot players
	if bonus.Type == domain.BonusFreeSpins && features.FavoriteGameType != domain.GameTypeSlot {
		return false
	}

	// 4) high-wagering guard
	if bonus.WageringRequirement != nil && *bonus.WageringRequirement > highWageringThreshold {
		if features.WageringCompletionRate < highWageringMinCompletion {
			return false
		}
	}

	// 5) game overlap
	if len(bonus.ApplicableGameIDs) > 0 && len(features.TopPlayedGameIDs) > 0 {
		if !anyGameOverlap(bonus.ApplicableGameIDs, features.TopPlayedGameIDs) {
			return false
		}
	}

	return true
}

func anyGameOverlap(applicable []uint64, played []uint64) bool {
	for _, gameID := range played {
		for _, candidate := range applicable {
			if gameID == candidate {
				return true
			}
		}
	}
	return false
}
