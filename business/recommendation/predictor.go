package recommendation

import (
	"context"
	"fmt"

	"playerEngagement/domain"
)

// Predictor produces game candidates for a player's feature snapshot. It is
// an external collaborator: a model server can stand behind this interface,
// and its failures always propagate to the caller.
type Predictor interface {
	PredictGames(ctx context.Context, features domain.PlayerFeatures, count int) ([]domain.GameRecommendation, error)
}

// PredictionRepository is the popularity source backing the default predictor.
type PredictionRepository interface {
	TopGamesForSegment(ctx context.Context, segment domain.Segment, limit int) ([]domain.GameRecommendation, error)
	TopGamesOverall(ctx context.Context, limit int) ([]domain.GameRecommendation, error)
}

// SegmentPopularityPredictor is the built-in predictor: most played games
// among the player's segment, falling back to overall popularity for cold
// segments. Games the player already plays the most rank first.
type SegmentPopularityPredictor struct {
	repo PredictionRepository
}

var _ Predictor = (*SegmentPopularityPredictor)(nil)

func NewSegmentPopularityPredictor(repo PredictionRepository) *SegmentPopularityPredictor {
	return &SegmentPopularityPredictor{repo: repo}
}

func (p *SegmentPopularityPredictor) PredictGames(
	ctx context.Context,
	features domain.PlayerFeatures,
	count int,
) ([]domain.GameRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if count <= 0 {
		count = 5
	}

	// over-fetch so the personal boost below has room to reorder
	candidateLimit := count * 3

	candidates, err := p.repo.TopGamesForSegment(ctx, features.Segment, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("segment popularity: %w", err)
	}

	if len(candidates) == 0 {
		candidates, err = p.repo.TopGamesOverall(ctx, candidateLimit)
		if err != nil {
			return nil, fmt.Errorf("overall popularity: %w", err)
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	played := make(map[uint64]int, len(features.TopPlayedGameIDs))
	for rank, gameID := range features.TopPlayedGameIDs {
		played[gameID] = rank
	}

	// boost games from the player's own top list, preserving popularity
	// order within each group
	boosted := make([]domain.GameRecommendation, 0, len(candidates))
	rest := make([]domain.GameRecommendation, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := played[candidate.GameID]; ok {
			boosted = append(boosted, candidate)
		} else {
			rest = append(rest, candidate)
		}
	}

	out := append(boosted, rest...)
	if len(out) > count {
		out = out[:count]
	}

	return out, nil
}
