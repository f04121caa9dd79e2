package bonus

import (
	"playerEngagement/domain"
)

// Scoring weights. Score estimates conversion likelihood and only ranks
// bonuses; it never gates eligibility.
const (
	baseScore = 0.5

	segmentAdjVIP     = 0.2
	segmentAdjRegular = 0.1
	segmentAdjNew     = -0.1
	segmentAdjDormant = -0.2

	preferredTypeBonus = 0.15

	usageRateWeight = 0.2

	wageringPenaltyWeight = 0.2

	// flat score for inappropriate bonuses so they always sort below any
	// genuinely scored candidate
	ineligibleScore = 0.1
)

// Score estimates the conversion likelihood of a bonus for a feature
// snapshot. Deterministic, pure, clamped to [0, 1].
func Score(features domain.PlayerFeatures, bonus domain.Bonus) float64 {
	score := baseScore

	switch features.Segment {
	case domain.SegmentVIP:
		score += segmentAdjVIP
	case domain.SegmentRegular:
		score += segmentAdjRegular
	case domain.SegmentNew:
		score += segmentAdjNew
	case domain.SegmentDormant:
		score += segmentAdjDormant
	}

	if features.PreferredBonusType != nil && *features.PreferredBonusType == bonus.Type {
		score += preferredTypeBonus
	}

	score += features.BonusUsageRate * usageRateWeight

	// Only high-wagering bonuses carry the completion penalty. Requirements
	// at or below the threshold score as if unencumbered.
	if bonus.WageringRequirement != nil && *bonus.WageringRequirement > highWageringThreshold {
		score -= (1 - features.WageringCompletionRate) * wageringPenaltyWeight
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
