package domain

import (
	"time"

	"gorm.io/datatypes"
)

type BonusType string

const (
	BonusDepositMatch BonusType = "deposit_match"
	BonusReload       BonusType = "reload"
	BonusFreeSpins    BonusType = "free_spins"
	BonusNoDeposit    BonusType = "no_deposit"
	BonusCashback     BonusType = "cashback"
)

func (t BonusType) Valid() bool {
	switch t {
	case BonusDepositMatch, BonusReload, BonusFreeSpins, BonusNoDeposit, BonusCashback:
		return true
	}
	return false
}

// RequiresDeposit reports whether a claim starts pending a deposit confirmation
// instead of activating immediately.
func (t BonusType) RequiresDeposit() bool {
	return t == BonusDepositMatch || t == BonusReload
}

// CREATE TABLE public.bonuses (
//     id                   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name                 TEXT NOT NULL,
//     bonus_type           TEXT NOT NULL,
//     amount               NUMERIC,
//     target_segments      JSONB,
//     applicable_game_ids  JSONB,
//     minimum_deposit      NUMERIC,
//     wagering_requirement NUMERIC,
//     is_active            BOOLEAN DEFAULT TRUE,
//     valid_from           TIMESTAMPTZ,
//     valid_until          TIMESTAMPTZ,
//     created_at           TIMESTAMPTZ DEFAULT NOW()
// );

type Bonus struct {
	ID       uint64    `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Type     BonusType `gorm:"column:bonus_type;not null" json:"type"`
	Amount   float64   `gorm:"column:amount;type:numeric" json:"amount"`
	// empty = global, offered to every segment
	TargetSegments datatypes.JSONSlice[Segment] `gorm:"column:target_segments;type:jsonb" json:"target_segments"`
	// empty = unrestricted
	ApplicableGameIDs datatypes.JSONSlice[uint64] `gorm:"column:applicable_game_ids;type:jsonb" json:"applicable_game_ids"`
	MinimumDeposit    *float64                    `gorm:"column:minimum_deposit;type:numeric" json:"minimum_deposit,omitempty"`
	// percentage of the bonus amount that must be wagered before conversion
	WageringRequirement *float64  `gorm:"column:wagering_requirement;type:numeric" json:"wagering_requirement,omitempty"`
	IsActive            bool      `gorm:"column:is_active;default:true" json:"is_active"`
	ValidFrom           time.Time `gorm:"column:valid_from" json:"valid_from"`
	ValidUntil          time.Time `gorm:"column:valid_until" json:"valid_until"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Bonus) TableName() string {
	return "bonuses"
}

// TargetsSegment reports whether the bonus may be offered to the given segment.
// An empty target set means the bonus is global.
func (b Bonus) TargetsSegment(seg Segment) bool {
	if len(b.TargetSegments) == 0 {
		return true
	}
	for _, s := range b.TargetSegments {
		if s == seg {
			return true
		}
	}
	return false
}

// AppliesToGame reports whether the bonus is playable on the given game.
func (b Bonus) AppliesToGame(gameID uint64) bool {
	if len(b.ApplicableGameIDs) == 0 {
		return true
	}
	for _, id := range b.ApplicableGameIDs {
		if id == gameID {
			return true
		}
	}
	return false
}

// WithinValidity reports whether now falls inside the bonus validity window.
func (b Bonus) WithinValidity(now time.Time) bool {
	if !b.ValidFrom.IsZero() && now.Before(b.ValidFrom) {
		return false
	}
	if !b.ValidUntil.IsZero() && now.After(b.ValidUntil) {
		return false
	}
	return true
}

// ScoredBonus pairs a bonus with its conversion-likelihood score for ranking.
type ScoredBonus struct {
	Bonus Bonus   `json:"bonus"`
	Score float64 `json:"score"`
}
