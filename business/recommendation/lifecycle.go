package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerEngagement/domain"
	"playerEngagement/pkg/logger"

	"gorm.io/gorm"
)

// RecordDisplayed latches the displayed flag. Replays are no-ops; the first
// event's timestamp is the one that sticks.
func (s *Service) RecordDisplayed(ctx context.Context, recommendationID uint) error {
	return s.recordEvent(ctx, recommendationID, "displayed",
		func(rec *domain.Recommendation) bool {
			if rec.IsDisplayed {
				return false
			}
			now := time.Now()
			rec.IsDisplayed = true
			rec.DisplayedAt = &now
			return true
		})
}

// RecordClicked latches the clicked flag.
func (s *Service) RecordClicked(ctx context.Context, recommendationID uint) error {
	return s.recordEvent(ctx, recommendationID, "clicked",
		func(rec *domain.Recommendation) bool {
			if rec.IsClicked {
				return false
			}
			now := time.Now()
			rec.IsClicked = true
			rec.ClickedAt = &now
			return true
		})
}

// RecordAccepted latches the accepted flag.
func (s *Service) RecordAccepted(ctx context.Context, recommendationID uint) error {
	return s.recordEvent(ctx, recommendationID, "accepted",
		func(rec *domain.Recommendation) bool {
			if rec.IsAccepted {
				return false
			}
			now := time.Now()
			rec.IsAccepted = true
			rec.AcceptedAt = &now
			return true
		})
}

// recordEvent loads, mutates and saves one recommendation. The cached copy
// under recommendation:latest:{playerID} is left alone on purpose: event
// flags are analytics state and may trail the cache until it expires.
func (s *Service) recordEvent(ctx context.Context, recommendationID uint, event string, apply func(*domain.Recommendation) bool) error {
	rec, err := s.recRepo.FindByID(ctx, recommendationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecommendationNotFound
	}
	if err != nil {
		return fmt.Errorf("load recommendation: %w", err)
	}

	if !apply(&rec) {
		logger.Debug("recommendation event replayed",
			"recommendation_id", recommendationID,
			"event", event,
		)
		return nil
	}

	if err := s.recRepo.Save(ctx, &rec); err != nil {
		return fmt.Errorf("save recommendation: %w", err)
	}

	recommendationEventsTotal.WithLabelValues(event).Inc()
	return nil
}
