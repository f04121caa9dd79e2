package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"playerEngagement/domain"

	"gorm.io/gorm"
)

// FeatureRepository builds a player's behavioral snapshot from raw activity
// tables. The snapshot is read-only downstream; the cached layer sits above
// this repository, not inside it.
type FeatureRepository struct {
	DB *gorm.DB
}

func NewFeatureRepository(db *gorm.DB) *FeatureRepository {
	return &FeatureRepository{DB: db}
}

const topPlayedGamesLimit = 10

func (r *FeatureRepository) Extract(ctx context.Context, playerID uint) (domain.PlayerFeatures, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlayerFeatures{}, fmt.Errorf("context error: %w", err)
	}

	var player domain.Player
	if err := r.DB.WithContext(ctx).First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PlayerFeatures{}, gorm.ErrRecordNotFound
		}
		return domain.PlayerFeatures{}, fmt.Errorf("failed to find player: %w", err)
	}

	features := domain.PlayerFeatures{
		PlayerID:              playerID,
		Segment:               player.Segment,
		DaysSinceRegistration: int(time.Since(player.CreatedAt).Hours() / 24),
	}

	avgDeposit, err := r.averageDeposit(ctx, playerID)
	if err != nil {
		return domain.PlayerFeatures{}, err
	}
	features.AverageDepositAmount = avgDeposit

	favorite, topGames, err := r.playBehavior(ctx, playerID)
	if err != nil {
		return domain.PlayerFeatures{}, err
	}
	features.FavoriteGameType = favorite
	features.TopPlayedGameIDs = topGames

	completion, usage, preferred, err := r.bonusBehavior(ctx, playerID)
	if err != nil {
		return domain.PlayerFeatures{}, err
	}
	features.WageringCompletionRate = completion
	features.BonusUsageRate = usage
	features.PreferredBonusType = preferred

	return features, nil
}

func (r *FeatureRepository) averageDeposit(ctx context.Context, playerID uint) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.WithContext(ctx).
		Table("deposits").
		Select("AVG(amount)").
		Where("player_id = ?", playerID).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate deposits: %w", err)
	}

	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// playBehavior derives the favorite game type (most wagered) and the ordered
// top played game ids (by round count).
func (r *FeatureRepository) playBehavior(ctx context.Context, playerID uint) (domain.GameType, []uint64, error) {
	var favorite struct {
		GameType sql.NullString `gorm:"column:game_type"`
	}
	err := r.DB.WithContext(ctx).
		Table("game_rounds").
		Select("games.game_type").
		Joins("JOIN games ON games.id = game_rounds.game_id").
		Where("game_rounds.player_id = ?", playerID).
		Group("games.game_type").
		Order("SUM(game_rounds.wager) DESC").
		Limit(1).
		Scan(&favorite).Error
	if err != nil {
		return "", nil, fmt.Errorf("failed to aggregate favorite game type: %w", err)
	}

	var topGames []uint64
	err = r.DB.WithContext(ctx).
		Table("game_rounds").
		Select("game_id").
		Where("player_id = ?", playerID).
		Group("game_id").
		Order("COUNT(*) DESC").
		Limit(topPlayedGamesLimit).
		Pluck("game_id", &topGames).Error
	if err != nil {
		return "", nil, fmt.Errorf("failed to aggregate top played games: %w", err)
	}

	favType := domain.GameTypeSlot
	if favorite.GameType.Valid {
		favType = domain.GameType(favorite.GameType.String)
	}

	return favType, topGames, nil
}

// bonusBehavior derives wagering completion rate, overall bonus usage rate
// and the player's most claimed bonus type from claim history.
func (r *FeatureRepository) bonusBehavior(ctx context.Context, playerID uint) (float64, float64, *domain.BonusType, error) {
	var counts struct {
		Total         int64 `gorm:"column:total"`
		WithWagering  int64 `gorm:"column:with_wagering"`
		CompletedWreq int64 `gorm:"column:completed_wreq"`
	}
	err := r.DB.WithContext(ctx).
		Table("bonus_claims").
		Select(
			"COUNT(*) AS total, " +
				"COUNT(*) FILTER (WHERE wagering_progress IS NOT NULL) AS with_wagering, " +
				"COUNT(*) FILTER (WHERE wagering_progress IS NOT NULL AND status = 'completed') AS completed_wreq",
		).
		Where("player_id = ?", playerID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to aggregate claim counts: %w", err)
	}

	completion := 0.0
	if counts.WithWagering > 0 {
		completion = float64(counts.CompletedWreq) / float64(counts.WithWagering)
	}

	var offered int64
	err = r.DB.WithContext(ctx).
		Table("bonuses").
		Where("is_active = TRUE").
		Count(&offered).Error
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to count offered bonuses: %w", err)
	}

	usage := 0.0
	if offered > 0 {
		var claimedDistinct int64
		err = r.DB.WithContext(ctx).
			Table("bonus_claims").
			Where("player_id = ?", playerID).
			Distinct("bonus_id").
			Count(&claimedDistinct).Error
		if err != nil {
			return 0, 0, nil, fmt.Errorf("failed to count claimed bonuses: %w", err)
		}

		usage = float64(claimedDistinct) / float64(offered)
		if usage > 1 {
			usage = 1
		}
	}

	var preferredRow struct {
		BonusType sql.NullString `gorm:"column:bonus_type"`
	}
	err = r.DB.WithContext(ctx).
		Table("bonus_claims").
		Select("bonuses.bonus_type").
		Joins("JOIN bonuses ON bonuses.id = bonus_claims.bonus_id").
		Where("bonus_claims.player_id = ?", playerID).
		Group("bonuses.bonus_type").
		Order("COUNT(*) DESC").
		Limit(1).
		Scan(&preferredRow).Error
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to aggregate preferred bonus type: %w", err)
	}

	var preferred *domain.BonusType
	if preferredRow.BonusType.Valid {
		t := domain.BonusType(preferredRow.BonusType.String)
		preferred = &t
	}

	return completion, usage, preferred, nil
}
