package postgres

import (
	"context"
	"errors"
	"fmt"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{
		DB: db,
	}
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) FindByID(ctx context.Context, id uint) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}

	var rec domain.Recommendation

	err := r.DB.WithContext(ctx).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recommendation{}, gorm.ErrRecordNotFound
		}
		return domain.Recommendation{}, fmt.Errorf("failed to find recommendation: %w", err)
	}

	return rec, nil
}

// FindLatestByPlayer returns the most recent recommendation regardless of
// freshness; the service decides whether it is still valid.
func (r *RecommendationRepository) FindLatestByPlayer(ctx context.Context, playerID uint) (domain.Recommendation, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, false, fmt.Errorf("context error: %w", err)
	}

	var rec domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recommendation{}, false, nil
		}
		return domain.Recommendation{}, false, fmt.Errorf("failed to find latest recommendation: %w", err)
	}

	return rec, true, nil
}

// Save persists the latch flags and their timestamps.
func (r *RecommendationRepository) Save(ctx context.Context, rec *domain.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Recommendation{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"is_displayed": rec.IsDisplayed,
			"is_clicked":   rec.IsClicked,
			"is_accepted":  rec.IsAccepted,
			"displayed_at": rec.DisplayedAt,
			"clicked_at":   rec.ClickedAt,
			"accepted_at":  rec.AcceptedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save recommendation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
