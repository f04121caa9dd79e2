package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Recommendation is a personalized "what to play / what to claim" payload.
// Each boolean flag is a one-way latch: false -> true exactly once, with the
// first event's timestamp kept. ValidUntil is fixed at creation; an expired
// recommendation is superseded by a fresh row, never deleted.
type Recommendation struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	PlayerID         uint                        `gorm:"column:player_id;not null;index" json:"player_id"`
	RecommendedGames datatypes.JSONSlice[uint64] `gorm:"column:recommended_games;type:jsonb" json:"recommended_games"`
	RecommendedBonus *uint64                     `gorm:"column:recommended_bonus_id" json:"recommended_bonus_id,omitempty"`
	IsDisplayed      bool                        `gorm:"column:is_displayed;default:false" json:"is_displayed"`
	IsClicked        bool                        `gorm:"column:is_clicked;default:false" json:"is_clicked"`
	IsAccepted       bool                        `gorm:"column:is_accepted;default:false" json:"is_accepted"`
	DisplayedAt      *time.Time                  `gorm:"column:displayed_at" json:"displayed_at,omitempty"`
	ClickedAt        *time.Time                  `gorm:"column:clicked_at" json:"clicked_at,omitempty"`
	AcceptedAt       *time.Time                  `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	ValidUntil       time.Time                   `gorm:"column:valid_until;not null" json:"valid_until"`
	Context          datatypes.JSONMap           `gorm:"column:context;type:jsonb" json:"context,omitempty"`
	CreatedAt        time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

// IsValid reports freshness; flag latches are orthogonal to it.
func (r Recommendation) IsValid(now time.Time) bool {
	return now.Before(r.ValidUntil)
}

// GameRecommendation is one ranked game entry inside a recommendation payload.
type GameRecommendation struct {
	GameID uint64  `json:"game_id"`
	Score  float64 `json:"score"`
}

// BonusRecommendation is the single best bonus pick for a player.
type BonusRecommendation struct {
	Bonus  Bonus   `json:"bonus"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}
