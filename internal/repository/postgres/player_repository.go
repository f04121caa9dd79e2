package postgres

import (
	"context"
	"errors"
	"fmt"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

type PlayerRepository struct {
	DB *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{
		DB: db,
	}
}

func (r *PlayerRepository) Create(ctx context.Context, player *domain.Player) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(player).Error; err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

func (r *PlayerRepository) FindByID(ctx context.Context, id uint) (domain.Player, error) {
	if err := ctx.Err(); err != nil {
		return domain.Player{}, fmt.Errorf("context error: %w", err)
	}

	var player domain.Player

	err := r.DB.WithContext(ctx).First(&player, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Player{}, gorm.ErrRecordNotFound
		}
		return domain.Player{}, fmt.Errorf("failed to find player: %w", err)
	}

	return player, nil
}

func (r *PlayerRepository) FindByEmail(ctx context.Context, email string) (domain.Player, error) {
	if err := ctx.Err(); err != nil {
		return domain.Player{}, fmt.Errorf("context error: %w", err)
	}

	var player domain.Player

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Player{}, gorm.ErrRecordNotFound
		}
		return domain.Player{}, fmt.Errorf("failed to find player by email: %w", err)
	}

	return player, nil
}

func (r *PlayerRepository) Update(ctx context.Context, player *domain.Player) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Player{}).
		Where("id = ?", player.ID).
		Updates(map[string]interface{}{
			"full_name": player.FullName,
			"password":  player.Password,
			"segment":   player.Segment,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update player: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *PlayerRepository) UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Player{}).
		Where("id = ?", id).
		Update("is_verified", isVerified)
	if result.Error != nil {
		return fmt.Errorf("failed to update verification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *PlayerRepository) UpdateSegment(ctx context.Context, id uint, segment domain.Segment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Player{}).
		Where("id = ?", id).
		Update("segment", segment)
	if result.Error != nil {
		return fmt.Errorf("failed to update segment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
