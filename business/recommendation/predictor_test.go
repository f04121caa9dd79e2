package recommendation

import (
	"context"
	"testing"

	"playerEngagement/domain"
)

type fakePredictionRepo struct {
	segment map[domain.Segment][]domain.GameRecommendation
	overall []domain.GameRecommendation
}

func (r *fakePredictionRepo) TopGamesForSegment(_ context.Context, seg domain.Segment, limit int) ([]domain.GameRecommendation, error) {
	games := r.segment[seg]
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (r *fakePredictionRepo) TopGamesOverall(_ context.Context, limit int) ([]domain.GameRecommendation, error) {
	games := r.overall
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func TestPredictGames_BoostsOwnTopGames(t *testing.T) {
	repo := &fakePredictionRepo{
		segment: map[domain.Segment][]domain.GameRecommendation{
			domain.SegmentRegular: {
				{GameID: 1, Score: 0.9},
				{GameID: 2, Score: 0.8},
				{GameID: 3, Score: 0.7},
				{GameID: 4, Score: 0.6},
			},
		},
	}
	p := NewSegmentPopularityPredictor(repo)

	features := domain.PlayerFeatures{
		Segment:          domain.SegmentRegular,
		TopPlayedGameIDs: []uint64{3},
	}

	games, err := p.PredictGames(context.Background(), features, 3)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	if games[0].GameID != 3 {
		t.Fatalf("player's own game must rank first, got %d", games[0].GameID)
	}
	if games[1].GameID != 1 || games[2].GameID != 2 {
		t.Fatal("remaining games must keep popularity order")
	}
}

func TestPredictGames_FallsBackToOverall(t *testing.T) {
	repo := &fakePredictionRepo{
		segment: map[domain.Segment][]domain.GameRecommendation{},
		overall: []domain.GameRecommendation{
			{GameID: 5, Score: 0.5},
		},
	}
	p := NewSegmentPopularityPredictor(repo)

	games, err := p.PredictGames(context.Background(), domain.PlayerFeatures{Segment: domain.SegmentDormant}, 3)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(games) != 1 || games[0].GameID != 5 {
		t.Fatal("cold segment must fall back to overall popularity")
	}
}

func TestPredictGames_EmptyCatalog(t *testing.T) {
	repo := &fakePredictionRepo{segment: map[domain.Segment][]domain.GameRecommendation{}}
	p := NewSegmentPopularityPredictor(repo)

	games, err := p.PredictGames(context.Background(), domain.PlayerFeatures{}, 3)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(games) != 0 {
		t.Fatal("empty catalog must yield no recommendations")
	}
}
