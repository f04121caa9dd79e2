package postgres

import (
	"context"
	"fmt"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

type DepositRepository struct {
	DB *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{DB: db}
}

func (r *DepositRepository) Create(ctx context.Context, deposit *domain.Deposit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(deposit).Error; err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}

	return nil
}

func (r *DepositRepository) FindByPlayer(ctx context.Context, playerID uint) ([]domain.Deposit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var deposits []domain.Deposit
	err := r.DB.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Find(&deposits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find deposits: %w", err)
	}

	return deposits, nil
}
