package domain

import (
	"time"
)

type ClaimStatus string

const (
	ClaimStatusClaimed   ClaimStatus = "claimed"
	ClaimStatusActive    ClaimStatus = "active"
	ClaimStatusCompleted ClaimStatus = "completed"
	ClaimStatusExpired   ClaimStatus = "expired"
)

// IsTerminal reports whether the claim can no longer change state.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusCompleted || s == ClaimStatusExpired
}

// BonusClaim is append-only history: rows are created on claim and mutated
// only through the defined status transitions, never deleted.
type BonusClaim struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Reference string      `gorm:"column:reference;unique;not null" json:"reference"`
	PlayerID  uint        `gorm:"column:player_id;not null;index" json:"player_id"`
	BonusID   uint64      `gorm:"column:bonus_id;not null;index" json:"bonus_id"`
	Status    ClaimStatus `gorm:"column:status;not null" json:"status"`
	ClaimDate time.Time   `gorm:"column:claim_date;not null" json:"claim_date"`
	// present only when the bonus carries a wagering requirement
	WageringProgress *float64  `gorm:"column:wagering_progress;type:numeric" json:"wagering_progress,omitempty"`
	ExpiryDate       time.Time `gorm:"column:expiry_date;not null" json:"expiry_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (BonusClaim) TableName() string {
	return "bonus_claims"
}
