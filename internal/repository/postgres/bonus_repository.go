package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

type BonusRepository struct {
	DB *gorm.DB
}

func NewBonusRepository(db *gorm.DB) *BonusRepository {
	return &BonusRepository{
		DB: db,
	}
}

func (r *BonusRepository) Create(ctx context.Context, bonus *domain.Bonus) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(bonus).Error; err != nil {
		return fmt.Errorf("failed to create bonus: %w", err)
	}

	return nil
}

func (r *BonusRepository) FindByID(ctx context.Context, id uint64) (domain.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bonus{}, fmt.Errorf("context error: %w", err)
	}

	var bonus domain.Bonus

	err := r.DB.WithContext(ctx).First(&bonus, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Bonus{}, gorm.ErrRecordNotFound
		}
		return domain.Bonus{}, fmt.Errorf("failed to find bonus: %w", err)
	}

	return bonus, nil
}

func (r *BonusRepository) FindActive(ctx context.Context, now time.Time) ([]domain.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bonuses []domain.Bonus
	err := r.DB.WithContext(ctx).
		Where("is_active = TRUE").
		Where("(valid_from IS NULL OR valid_from <= ?)", now).
		Where("(valid_until IS NULL OR valid_until >= ?)", now).
		Order("id").
		Find(&bonuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active bonuses: %w", err)
	}

	return bonuses, nil
}

func (r *BonusRepository) FindByType(ctx context.Context, bonusType domain.BonusType, now time.Time) ([]domain.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bonuses []domain.Bonus
	err := r.DB.WithContext(ctx).
		Where("bonus_type = ?", bonusType).
		Where("is_active = TRUE").
		Where("(valid_from IS NULL OR valid_from <= ?)", now).
		Where("(valid_until IS NULL OR valid_until >= ?)", now).
		Order("id").
		Find(&bonuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bonuses by type: %w", err)
	}

	return bonuses, nil
}

// FindBySegment returns active bonuses targeted at the segment. Bonuses with
// an empty target set are global and excluded here; callers union them with
// FindGlobal when they want the full offer list.
func (r *BonusRepository) FindBySegment(ctx context.Context, segment domain.Segment, now time.Time) ([]domain.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bonuses []domain.Bonus
	err := r.DB.WithContext(ctx).
		Where("target_segments @> ?", fmt.Sprintf(`["%s"]`, segment)).
		Where("is_active = TRUE").
		Where("(valid_from IS NULL OR valid_from <= ?)", now).
		Where("(valid_until IS NULL OR valid_until >= ?)", now).
		Order("id").
		Find(&bonuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bonuses by segment: %w", err)
	}

	return bonuses, nil
}

// FindGlobal returns active bonuses with no segment targeting.
func (r *BonusRepository) FindGlobal(ctx context.Context, now time.Time) ([]domain.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bonuses []domain.Bonus
	err := r.DB.WithContext(ctx).
		Where("(target_segments IS NULL OR jsonb_array_length(target_segments) = 0)").
		Where("is_active = TRUE").
		Where("(valid_from IS NULL OR valid_from <= ?)", now).
		Where("(valid_until IS NULL OR valid_until >= ?)", now).
		Order("id").
		Find(&bonuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find global bonuses: %w", err)
	}

	return bonuses, nil
}

// FindByGame returns active bonuses playable on the game; bonuses with an
// empty applicable set are unrestricted and included.
func (r *BonusRepository) FindByGame(ctx context.Context, gameID uint64, now time.Time) ([]domain.Bonus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bonuses []domain.Bonus
	err := r.DB.WithContext(ctx).
		Where("(applicable_game_ids IS NULL OR jsonb_array_length(applicable_game_ids) = 0 OR applicable_game_ids @> ?)", fmt.Sprintf("[%d]", gameID)).
		Where("is_active = TRUE").
		Where("(valid_from IS NULL OR valid_from <= ?)", now).
		Where("(valid_until IS NULL OR valid_until >= ?)", now).
		Order("id").
		Find(&bonuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bonuses by game: %w", err)
	}

	return bonuses, nil
}

func (r *BonusRepository) Update(ctx context.Context, bonus *domain.Bonus) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"name":                 bonus.Name,
		"bonus_type":           bonus.Type,
		"amount":               bonus.Amount,
		"target_segments":      bonus.TargetSegments,
		"applicable_game_ids":  bonus.ApplicableGameIDs,
		"minimum_deposit":      bonus.MinimumDeposit,
		"wagering_requirement": bonus.WageringRequirement,
		"is_active":            bonus.IsActive,
		"valid_from":           bonus.ValidFrom,
		"valid_until":          bonus.ValidUntil,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Bonus{}).Where("id = ?", bonus.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update bonus: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *BonusRepository) Deactivate(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Bonus{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate bonus: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
