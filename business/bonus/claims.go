package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerEngagement/domain"
	"playerEngagement/pkg/cache"
	"playerEngagement/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claim lifecycle: Claimed -> Active -> Completed | Expired. Deposit bonuses
// enter at Claimed pending deposit confirmation; instant bonuses start Active.

// ClaimBonus validates the business rules and opens a claim. Rule failures
// come back as rejection errors (see IsRejection), never as panics or 5xx.
func (s *Service) ClaimBonus(ctx context.Context, playerID uint, bonusID uint64) (domain.BonusClaim, error) {
	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BonusClaim{}, ErrPlayerNotFound
		}
		return domain.BonusClaim{}, fmt.Errorf("load player: %w", err)
	}

	bonus, err := s.GetBonus(ctx, bonusID)
	if err != nil {
		return domain.BonusClaim{}, err
	}

	now := time.Now()

	if !bonus.IsActive || !bonus.WithinValidity(now) {
		logger.Warn("claim rejected: bonus inactive", "player_id", playerID, "bonus_id", bonusID)
		claimRejectionsTotal.WithLabelValues("inactive").Inc()
		return domain.BonusClaim{}, ErrBonusInactive
	}

	if _, open, err := s.claimRepo.FindNonTerminal(ctx, playerID, bonusID); err != nil {
		return domain.BonusClaim{}, fmt.Errorf("check open claim: %w", err)
	} else if open {
		logger.Warn("claim rejected: duplicate", "player_id", playerID, "bonus_id", bonusID)
		claimRejectionsTotal.WithLabelValues("duplicate").Inc()
		return domain.BonusClaim{}, ErrAlreadyClaimed
	}

	if !bonus.TargetsSegment(player.Segment) {
		logger.Warn("claim rejected: segment not targeted",
			"player_id", playerID,
			"bonus_id", bonusID,
			"segment", player.Segment,
		)
		claimRejectionsTotal.WithLabelValues("segment").Inc()
		return domain.BonusClaim{}, ErrSegmentNotTargeted
	}

	status := domain.ClaimStatusActive
	if bonus.Type.RequiresDeposit() {
		status = domain.ClaimStatusClaimed
	}

	claim := domain.BonusClaim{
		Reference:  uuid.NewString(),
		PlayerID:   playerID,
		BonusID:    bonusID,
		Status:     status,
		ClaimDate:  now,
		ExpiryDate: now.AddDate(0, 0, s.claimDays),
	}
	if bonus.WageringRequirement != nil && *bonus.WageringRequirement > 0 {
		progress := 0.0
		claim.WageringProgress = &progress
	}

	if err := s.claimRepo.Create(ctx, &claim); err != nil {
		return domain.BonusClaim{}, fmt.Errorf("create claim: %w", err)
	}

	// claim counts may affect list views
	s.cache.Invalidate(ctx,
		cache.PlayerClaimsKey(playerID),
		cache.BonusKey(bonusID),
		cache.ActiveBonusesKey(),
	)

	claimsTotal.WithLabelValues(string(status), string(bonus.Type)).Inc()
	logger.Info("bonus claimed",
		"player_id", playerID,
		"bonus_id", bonusID,
		"claim_id", claim.ID,
		"status", claim.Status,
	)

	return claim, nil
}

// ConfirmDeposit activates a deposit-pending claim once the payment system
// confirms the money-in. The deposit row also feeds the feature aggregates.
func (s *Service) ConfirmDeposit(ctx context.Context, claimID uint, amount float64) (domain.BonusClaim, error) {
	claim, err := s.loadOpenClaim(ctx, claimID)
	if err != nil {
		return domain.BonusClaim{}, err
	}

	if claim.Status != domain.ClaimStatusClaimed {
		return domain.BonusClaim{}, ErrDepositNotExpected
	}

	bonus, err := s.GetBonus(ctx, claim.BonusID)
	if err != nil {
		return domain.BonusClaim{}, err
	}

	if bonus.MinimumDeposit != nil && amount < *bonus.MinimumDeposit {
		logger.Warn("deposit rejected: below minimum",
			"claim_id", claimID,
			"amount", amount,
			"minimum", *bonus.MinimumDeposit,
		)
		return domain.BonusClaim{}, ErrDepositTooLow
	}

	deposit := domain.Deposit{
		PlayerID: claim.PlayerID,
		Amount:   amount,
	}
	if err := s.depositRepo.Create(ctx, &deposit); err != nil {
		return domain.BonusClaim{}, fmt.Errorf("record deposit: %w", err)
	}

	claim.Status = domain.ClaimStatusActive
	if err := s.claimRepo.Save(ctx, &claim); err != nil {
		return domain.BonusClaim{}, fmt.Errorf("activate claim: %w", err)
	}

	s.cache.Invalidate(ctx, cache.PlayerClaimsKey(claim.PlayerID))
	claimsTotal.WithLabelValues(string(domain.ClaimStatusActive), string(bonus.Type)).Inc()

	return claim, nil
}

// UpdateWageringProgress records wagering monotonically: a lower value than
// stored is a conflict, not something to clamp silently. Meeting the target
// completes the claim.
func (s *Service) UpdateWageringProgress(ctx context.Context, claimID uint, newProgress float64) (domain.BonusClaim, error) {
	claim, err := s.loadOpenClaim(ctx, claimID)
	if err != nil {
		return domain.BonusClaim{}, err
	}

	if claim.Status != domain.ClaimStatusActive {
		return domain.BonusClaim{}, ErrClaimNotOpen
	}

	if claim.WageringProgress == nil {
		return domain.BonusClaim{}, ErrNoWageringRequired
	}

	if newProgress < *claim.WageringProgress {
		logger.Warn("wagering progress conflict",
			"claim_id", claimID,
			"stored", *claim.WageringProgress,
			"proposed", newProgress,
		)
		return domain.BonusClaim{}, ErrProgressConflict
	}

	bonus, err := s.GetBonus(ctx, claim.BonusID)
	if err != nil {
		return domain.BonusClaim{}, err
	}

	claim.WageringProgress = &newProgress
	if newProgress >= wageringTarget(bonus) {
		claim.Status = domain.ClaimStatusCompleted
		claimsTotal.WithLabelValues(string(domain.ClaimStatusCompleted), string(bonus.Type)).Inc()
	}

	if err := s.claimRepo.Save(ctx, &claim); err != nil {
		return domain.BonusClaim{}, fmt.Errorf("save claim: %w", err)
	}

	s.cache.Invalidate(ctx, cache.PlayerClaimsKey(claim.PlayerID))

	return claim, nil
}

// ExpireClaims batch-marks every overdue open claim expired and drops the
// affected players' claim caches.
func (s *Service) ExpireClaims(ctx context.Context, now time.Time) (int, error) {
	playerIDs, err := s.claimRepo.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, playerID := range playerIDs {
		s.cache.Invalidate(ctx, cache.PlayerClaimsKey(playerID))
	}

	if len(playerIDs) > 0 {
		logger.Info("expired overdue claims", "players", len(playerIDs))
	}

	return len(playerIDs), nil
}

// loadOpenClaim fetches a claim and lazily expires it when its expiry date
// has already passed.
func (s *Service) loadOpenClaim(ctx context.Context, claimID uint) (domain.BonusClaim, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BonusClaim{}, ErrClaimNotFound
		}
		return domain.BonusClaim{}, fmt.Errorf("load claim: %w", err)
	}

	if claim.Status.IsTerminal() {
		return domain.BonusClaim{}, ErrClaimNotOpen
	}

	if time.Now().After(claim.ExpiryDate) {
		claim.Status = domain.ClaimStatusExpired
		if err := s.claimRepo.Save(ctx, &claim); err != nil {
			return domain.BonusClaim{}, fmt.Errorf("expire claim: %w", err)
		}
		s.cache.Invalidate(ctx, cache.PlayerClaimsKey(claim.PlayerID))
		return domain.BonusClaim{}, ErrClaimExpired
	}

	return claim, nil
}

// wageringTarget converts the percentage requirement into the absolute
// amount a player must wager.
func wageringTarget(bonus domain.Bonus) float64 {
	if bonus.WageringRequirement == nil {
		return 0
	}
	return bonus.Amount * *bonus.WageringRequirement / 100
}
