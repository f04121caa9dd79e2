package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerEngagement/business/bonus"
	"playerEngagement/domain"
	"playerEngagement/pkg/cache"
	"playerEngagement/pkg/config"
	"playerEngagement/pkg/logger"

	"gorm.io/datatypes"
)

// ---- Repository / collaborator interfaces ----

type RecommendationRepository interface {
	Create(ctx context.Context, rec *domain.Recommendation) error
	FindByID(ctx context.Context, id uint) (domain.Recommendation, error)
	FindLatestByPlayer(ctx context.Context, playerID uint) (domain.Recommendation, bool, error)
	Save(ctx context.Context, rec *domain.Recommendation) error
}

type FeatureProvider interface {
	Features(ctx context.Context, playerID uint) (domain.PlayerFeatures, error)
}

// BonusRecommender picks the single best bonus for a player. "Nothing
// suitable" is signalled with bonus.ErrNoBonusAvailable, not a failure.
type BonusRecommender interface {
	GetOptimalBonus(ctx context.Context, playerID uint) (domain.BonusRecommendation, error)
}

// ---- Service ----

type Service struct {
	recRepo   RecommendationRepository
	features  FeatureProvider
	predictor Predictor
	bonuses   BonusRecommender
	cache     *cache.Aside
	cacheTTL  time.Duration
	maxGames  int
	validity  time.Duration
}

func NewService(
	recRepo RecommendationRepository,
	features FeatureProvider,
	predictor Predictor,
	bonuses BonusRecommender,
	aside *cache.Aside,
	cacheCfg config.CacheConfig,
	recCfg config.RecommendationConfig,
) *Service {
	maxGames := recCfg.MaxGames
	if maxGames <= 0 {
		maxGames = 5
	}
	validityDays := recCfg.ValidityDays
	if validityDays <= 0 {
		validityDays = 7
	}

	return &Service{
		recRepo:   recRepo,
		features:  features,
		predictor: predictor,
		bonuses:   bonuses,
		cache:     aside,
		cacheTTL:  cacheCfg.RecommendationTTL,
		maxGames:  maxGames,
		validity:  time.Duration(validityDays) * 24 * time.Hour,
	}
}

// GetLatest returns the player's most recent valid recommendation,
// generating a fresh one when none exists or the latest has expired. The
// caller never sees stale or empty data.
func (s *Service) GetLatest(ctx context.Context, playerID uint) (domain.Recommendation, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.LatestRecommendationKey(playerID), s.cacheTTL,
		func(ctx context.Context) (domain.Recommendation, error) {
			latest, found, err := s.recRepo.FindLatestByPlayer(ctx, playerID)
			if err != nil {
				return domain.Recommendation{}, err
			}
			if found && latest.IsValid(time.Now()) {
				return latest, nil
			}
			return s.Generate(ctx, playerID)
		})
}

// Generate builds and persists a new recommendation. Predictor and feature
// failures propagate: there is no safe fallback payload.
func (s *Service) Generate(ctx context.Context, playerID uint) (domain.Recommendation, error) {
	features, err := s.features.Features(ctx, playerID)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("load features: %w", err)
	}

	games, err := s.predictor.PredictGames(ctx, features, s.maxGames)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("predict games: %w", err)
	}
	if len(games) == 0 {
		return domain.Recommendation{}, ErrNoGamesAvailable
	}

	gameIDs := make([]uint64, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.GameID)
	}

	now := time.Now()
	rec := domain.Recommendation{
		PlayerID:         playerID,
		RecommendedGames: datatypes.NewJSONSlice(gameIDs),
		ValidUntil:       now.Add(s.validity),
		Context: datatypes.JSONMap{
			"segment":            string(features.Segment),
			"favorite_game_type": string(features.FavoriteGameType),
			"generated_at":       now.Format(time.RFC3339),
		},
	}

	optimal, err := s.bonuses.GetOptimalBonus(ctx, playerID)
	switch {
	case errors.Is(err, bonus.ErrNoBonusAvailable):
		// recommendation ships without a bonus
	case err != nil:
		return domain.Recommendation{}, fmt.Errorf("optimal bonus: %w", err)
	default:
		bonusID := optimal.Bonus.ID
		rec.RecommendedBonus = &bonusID
	}

	if err := s.recRepo.Create(ctx, &rec); err != nil {
		return domain.Recommendation{}, fmt.Errorf("persist recommendation: %w", err)
	}

	cache.Set(ctx, s.cache, cache.LatestRecommendationKey(playerID), rec, s.cacheTTL)

	recommendationsGeneratedTotal.Inc()
	logger.Info("recommendation generated",
		"player_id", playerID,
		"recommendation_id", rec.ID,
		"games", len(gameIDs),
		"has_bonus", rec.RecommendedBonus != nil,
	)

	return rec, nil
}

// GetGameRecommendations answers the ad-hoc "top N games now" query straight
// from the predictor, without persisting a recommendation row.
func (s *Service) GetGameRecommendations(ctx context.Context, playerID uint, count int) ([]domain.GameRecommendation, error) {
	if count <= 0 || count > s.maxGames {
		count = s.maxGames
	}

	features, err := s.features.Features(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	games, err := s.predictor.PredictGames(ctx, features, count)
	if err != nil {
		return nil, fmt.Errorf("predict games: %w", err)
	}

	return games, nil
}

// GetBonusRecommendation returns the best bonus pick, passing through
// bonus.ErrNoBonusAvailable when nothing qualifies.
func (s *Service) GetBonusRecommendation(ctx context.Context, playerID uint) (domain.BonusRecommendation, error) {
	return s.bonuses.GetOptimalBonus(ctx, playerID)
}
