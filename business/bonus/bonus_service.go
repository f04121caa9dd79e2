package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerEngagement/domain"
	"playerEngagement/pkg/cache"
	"playerEngagement/pkg/config"
	"playerEngagement/pkg/logger"

	"gorm.io/gorm"
)

// ---- Repository interfaces ----

type BonusRepository interface {
	Create(ctx context.Context, bonus *domain.Bonus) error
	FindByID(ctx context.Context, id uint64) (domain.Bonus, error)
	FindActive(ctx context.Context, now time.Time) ([]domain.Bonus, error)
	FindByType(ctx context.Context, bonusType domain.BonusType, now time.Time) ([]domain.Bonus, error)
	FindBySegment(ctx context.Context, segment domain.Segment, now time.Time) ([]domain.Bonus, error)
	FindGlobal(ctx context.Context, now time.Time) ([]domain.Bonus, error)
	FindByGame(ctx context.Context, gameID uint64, now time.Time) ([]domain.Bonus, error)
	Update(ctx context.Context, bonus *domain.Bonus) error
	Deactivate(ctx context.Context, id uint64) error
}

type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.BonusClaim) error
	FindByID(ctx context.Context, id uint) (domain.BonusClaim, error)
	FindByPlayer(ctx context.Context, playerID uint) ([]domain.BonusClaim, error)
	FindNonTerminal(ctx context.Context, playerID uint, bonusID uint64) (domain.BonusClaim, bool, error)
	Save(ctx context.Context, claim *domain.BonusClaim) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]uint, error)
}

type PlayerRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Player, error)
}

type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
}

// FeatureProvider supplies the immutable behavioral snapshot used by
// eligibility and scoring.
type FeatureProvider interface {
	Features(ctx context.Context, playerID uint) (domain.PlayerFeatures, error)
}

// ---- Service ----

type Service struct {
	bonusRepo   BonusRepository
	claimRepo   ClaimRepository
	playerRepo  PlayerRepository
	depositRepo DepositRepository
	features    FeatureProvider
	cache       *cache.Aside
	cacheCfg    config.CacheConfig
	claimDays   int
}

func NewService(
	bonusRepo BonusRepository,
	claimRepo ClaimRepository,
	playerRepo PlayerRepository,
	depositRepo DepositRepository,
	features FeatureProvider,
	aside *cache.Aside,
	cacheCfg config.CacheConfig,
	bonusCfg config.BonusConfig,
) *Service {
	claimDays := bonusCfg.ClaimValidityDays
	if claimDays <= 0 {
		claimDays = 7
	}

	return &Service{
		bonusRepo:   bonusRepo,
		claimRepo:   claimRepo,
		playerRepo:  playerRepo,
		depositRepo: depositRepo,
		features:    features,
		cache:       aside,
		cacheCfg:    cacheCfg,
		claimDays:   claimDays,
	}
}

// ---- Catalog queries (cached) ----

func (s *Service) GetBonus(ctx context.Context, bonusID uint64) (domain.Bonus, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.BonusKey(bonusID), s.cacheCfg.BonusTTL,
		func(ctx context.Context) (domain.Bonus, error) {
			b, err := s.bonusRepo.FindByID(ctx, bonusID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.Bonus{}, ErrBonusNotFound
				}
				return domain.Bonus{}, err
			}
			return b, nil
		})
}

func (s *Service) ListActiveBonuses(ctx context.Context) ([]domain.Bonus, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.ActiveBonusesKey(), s.cacheCfg.BonusListTTL,
		func(ctx context.Context) ([]domain.Bonus, error) {
			return s.bonusRepo.FindActive(ctx, time.Now())
		})
}

func (s *Service) ListBonusesByType(ctx context.Context, bonusType domain.BonusType) ([]domain.Bonus, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.BonusesByTypeKey(bonusType), s.cacheCfg.BonusListTTL,
		func(ctx context.Context) ([]domain.Bonus, error) {
			return s.bonusRepo.FindByType(ctx, bonusType, time.Now())
		})
}

// ListBonusesForSegment returns what a segment can actually see: bonuses
// targeted at it plus global ones, de-duplicated by id.
func (s *Service) ListBonusesForSegment(ctx context.Context, segment domain.Segment) ([]domain.Bonus, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.BonusesBySegmentKey(segment), s.cacheCfg.BonusListTTL,
		func(ctx context.Context) ([]domain.Bonus, error) {
			return s.candidatesForSegment(ctx, segment)
		})
}

func (s *Service) ListBonusesForGame(ctx context.Context, gameID uint64) ([]domain.Bonus, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.BonusesByGameKey(gameID), s.cacheCfg.BonusListTTL,
		func(ctx context.Context) ([]domain.Bonus, error) {
			return s.bonusRepo.FindByGame(ctx, gameID, time.Now())
		})
}

func (s *Service) ListPlayerBonusClaims(ctx context.Context, playerID uint) ([]domain.BonusClaim, error) {
	return cache.GetOrCreate(ctx, s.cache, cache.PlayerClaimsKey(playerID), s.cacheCfg.PlayerClaimsTTL,
		func(ctx context.Context) ([]domain.BonusClaim, error) {
			return s.claimRepo.FindByPlayer(ctx, playerID)
		})
}

// candidatesForSegment unions segment-targeted bonuses with global ones,
// first occurrence wins on duplicate ids.
func (s *Service) candidatesForSegment(ctx context.Context, segment domain.Segment) ([]domain.Bonus, error) {
	now := time.Now()

	global, err := s.bonusRepo.FindGlobal(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load global bonuses: %w", err)
	}

	targeted, err := s.bonusRepo.FindBySegment(ctx, segment, now)
	if err != nil {
		return nil, fmt.Errorf("load segment bonuses: %w", err)
	}

	seen := make(map[uint64]struct{}, len(global)+len(targeted))
	out := make([]domain.Bonus, 0, len(global)+len(targeted))
	for _, b := range append(global, targeted...) {
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}

	return out, nil
}

// ---- Admin workflow ----

func (s *Service) CreateBonus(ctx context.Context, bonus *domain.Bonus) error {
	if err := s.bonusRepo.Create(ctx, bonus); err != nil {
		return err
	}

	s.invalidateBonusCaches(ctx, bonus)
	return nil
}

func (s *Service) UpdateBonus(ctx context.Context, bonus *domain.Bonus) error {
	if err := s.bonusRepo.Update(ctx, bonus); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBonusNotFound
		}
		return err
	}

	s.invalidateBonusCaches(ctx, bonus)
	return nil
}

func (s *Service) DeactivateBonus(ctx context.Context, bonusID uint64) error {
	bonus, err := s.GetBonus(ctx, bonusID)
	if err != nil {
		return err
	}

	if err := s.bonusRepo.Deactivate(ctx, bonusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBonusNotFound
		}
		return err
	}

	s.invalidateBonusCaches(ctx, &bonus)
	return nil
}

// invalidateBonusCaches drops every list view a bonus edit may affect.
func (s *Service) invalidateBonusCaches(ctx context.Context, bonus *domain.Bonus) {
	keys := []string{
		cache.BonusKey(bonus.ID),
		cache.ActiveBonusesKey(),
		cache.BonusesByTypeKey(bonus.Type),
	}

	if len(bonus.TargetSegments) == 0 {
		for _, seg := range []domain.Segment{domain.SegmentNew, domain.SegmentRegular, domain.SegmentVIP, domain.SegmentDormant} {
			keys = append(keys, cache.BonusesBySegmentKey(seg))
		}
	} else {
		for _, seg := range bonus.TargetSegments {
			keys = append(keys, cache.BonusesBySegmentKey(seg))
		}
	}

	for _, gameID := range bonus.ApplicableGameIDs {
		keys = append(keys, cache.BonusesByGameKey(gameID))
	}

	s.cache.Invalidate(ctx, keys...)
	logger.Debug("bonus caches invalidated", "bonus_id", bonus.ID, "keys", len(keys))
}
