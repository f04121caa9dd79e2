package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

type BonusClaimRepository struct {
	DB *gorm.DB
}

func NewBonusClaimRepository(db *gorm.DB) *BonusClaimRepository {
	return &BonusClaimRepository{
		DB: db,
	}
}

func (r *BonusClaimRepository) Create(ctx context.Context, claim *domain.BonusClaim) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(claim).Error; err != nil {
		return fmt.Errorf("failed to create bonus claim: %w", err)
	}

	return nil
}

func (r *BonusClaimRepository) FindByID(ctx context.Context, id uint) (domain.BonusClaim, error) {
	if err := ctx.Err(); err != nil {
		return domain.BonusClaim{}, fmt.Errorf("context error: %w", err)
	}

	var claim domain.BonusClaim

	err := r.DB.WithContext(ctx).First(&claim, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BonusClaim{}, gorm.ErrRecordNotFound
		}
		return domain.BonusClaim{}, fmt.Errorf("failed to find bonus claim: %w", err)
	}

	return claim, nil
}

func (r *BonusClaimRepository) FindByPlayer(ctx context.Context, playerID uint) ([]domain.BonusClaim, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var claims []domain.BonusClaim
	err := r.DB.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("claim_date DESC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bonus claims: %w", err)
	}

	return claims, nil
}

// FindNonTerminal returns the open claim for (player, bonus) if one exists.
// At most one such row exists per pair.
func (r *BonusClaimRepository) FindNonTerminal(ctx context.Context, playerID uint, bonusID uint64) (domain.BonusClaim, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.BonusClaim{}, false, fmt.Errorf("context error: %w", err)
	}

	var claim domain.BonusClaim
	err := r.DB.WithContext(ctx).
		Where("player_id = ? AND bonus_id = ?", playerID, bonusID).
		Where("status IN ?", []domain.ClaimStatus{domain.ClaimStatusClaimed, domain.ClaimStatusActive}).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BonusClaim{}, false, nil
		}
		return domain.BonusClaim{}, false, fmt.Errorf("failed to find open claim: %w", err)
	}

	return claim, true, nil
}

// Save persists a status transition. Claims are append-only history: only
// status and wagering_progress ever change after creation.
func (r *BonusClaimRepository) Save(ctx context.Context, claim *domain.BonusClaim) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.BonusClaim{}).
		Where("id = ?", claim.ID).
		Updates(map[string]interface{}{
			"status":            claim.Status,
			"wagering_progress": claim.WageringProgress,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save bonus claim: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ExpireOverdue marks every open claim whose expiry date has passed as
// expired, returning the affected players for cache invalidation.
func (r *BonusClaimRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var playerIDs []uint
	err := r.DB.WithContext(ctx).Model(&domain.BonusClaim{}).
		Where("status IN ?", []domain.ClaimStatus{domain.ClaimStatusClaimed, domain.ClaimStatusActive}).
		Where("expiry_date < ?", now).
		Distinct().
		Pluck("player_id", &playerIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue claims: %w", err)
	}

	if len(playerIDs) == 0 {
		return nil, nil
	}

	result := r.DB.WithContext(ctx).Model(&domain.BonusClaim{}).
		Where("status IN ?", []domain.ClaimStatus{domain.ClaimStatusClaimed, domain.ClaimStatusActive}).
		Where("expiry_date < ?", now).
		Update("status", domain.ClaimStatusExpired)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to expire claims: %w", result.Error)
	}

	return playerIDs, nil
}
