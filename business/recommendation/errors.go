package recommendation

import "errors"

var (
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrNoGamesAvailable       = errors.New("no games available to recommend")
)
