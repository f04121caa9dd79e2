package postgres

import (
	"context"
	"fmt"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

// PredictionRepository backs the default predictor with per-segment game
// popularity; a real model server can replace it behind the same interface.
type PredictionRepository struct {
	DB *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{DB: db}
}

// TopGamesForSegment returns the most played enabled games among players of
// the segment, ordered by round count.
func (r *PredictionRepository) TopGamesForSegment(ctx context.Context, segment domain.Segment, limit int) ([]domain.GameRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 5
	}

	var rows []struct {
		GameID uint64 `gorm:"column:game_id"`
		Rounds int64  `gorm:"column:rounds"`
	}
	err := r.DB.WithContext(ctx).
		Table("game_rounds").
		Select("game_rounds.game_id, COUNT(*) AS rounds").
		Joins("JOIN players ON players.id = game_rounds.player_id").
		Joins("JOIN games ON games.id = game_rounds.game_id").
		Where("players.segment = ?", segment).
		Where("games.is_enabled = TRUE").
		Group("game_rounds.game_id").
		Order("rounds DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query segment game popularity: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	max := float64(rows[0].Rounds)
	recs := make([]domain.GameRecommendation, 0, len(rows))
	for _, row := range rows {
		score := 1.0
		if max > 0 {
			score = float64(row.Rounds) / max
		}
		recs = append(recs, domain.GameRecommendation{
			GameID: row.GameID,
			Score:  score,
		})
	}

	return recs, nil
}

// TopGamesOverall is the cold-start fallback when a segment has no history.
func (r *PredictionRepository) TopGamesOverall(ctx context.Context, limit int) ([]domain.GameRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 5
	}

	var rows []struct {
		GameID uint64 `gorm:"column:game_id"`
		Rounds int64  `gorm:"column:rounds"`
	}
	err := r.DB.WithContext(ctx).
		Table("game_rounds").
		Select("game_rounds.game_id, COUNT(*) AS rounds").
		Joins("JOIN games ON games.id = game_rounds.game_id").
		Where("games.is_enabled = TRUE").
		Group("game_rounds.game_id").
		Order("rounds DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query game popularity: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	max := float64(rows[0].Rounds)
	recs := make([]domain.GameRecommendation, 0, len(rows))
	for _, row := range rows {
		score := 1.0
		if max > 0 {
			score = float64(row.Rounds) / max
		}
		recs = append(recs, domain.GameRecommendation{
			GameID: row.GameID,
			Score:  score,
		})
	}

	return recs, nil
}
