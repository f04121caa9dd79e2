package features

import (
	"context"
	"time"

	"playerEngagement/domain"
	"playerEngagement/pkg/cache"
)

// FeatureRepository contract interface
type FeatureRepository interface {
	Extract(ctx context.Context, playerID uint) (domain.PlayerFeatures, error)
}

// Service serves behavioral feature snapshots from cache, extracting fresh
// ones from the repository on miss. Snapshots are immutable: consumers only
// read them.
type Service struct {
	repo  FeatureRepository
	cache *cache.Aside
	ttl   time.Duration
}

func NewService(repo FeatureRepository, aside *cache.Aside, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: aside,
		ttl:   ttl,
	}
}

func (s *Service) Features(ctx context.Context, playerID uint) (domain.PlayerFeatures, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.PlayerFeaturesKey(playerID), s.ttl,
		func(ctx context.Context) (domain.PlayerFeatures, error) {
			return s.repo.Extract(ctx, playerID)
		})
}

// Invalidate drops the cached snapshot so the next read re-extracts.
func (s *Service) Invalidate(ctx context.Context, playerID uint) {
	s.cache.Invalidate(ctx, cache.PlayerFeaturesKey(playerID))
}
