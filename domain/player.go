package domain

import (
	"time"

	"gorm.io/gorm"
)

// Segment is the coarse player classification driving targeting and scoring.
type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentRegular Segment = "regular"
	SegmentVIP     Segment = "vip"
	SegmentDormant Segment = "dormant"
)

func (s Segment) Valid() bool {
	switch s {
	case SegmentNew, SegmentRegular, SegmentVIP, SegmentDormant:
		return true
	}
	return false
}

type Player struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	FullName   string  `gorm:"column:full_name;not null" json:"full_name"`
	Email      string  `gorm:"column:email;unique;not null" json:"email"`
	IsVerified bool    `gorm:"column:is_verified;default:false" json:"is_verified"`
	Password   string  `gorm:"column:password;not null" json:"-"`
	Role       string  `gorm:"column:role;default:player" json:"role"`
	Segment    Segment `gorm:"column:segment;default:new" json:"segment"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Player) TableName() string {
	return "players"
}

// Deposit is a confirmed money-in event, source for average-deposit features.
type Deposit struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PlayerID  uint      `gorm:"column:player_id;not null;index" json:"player_id"`
	Amount    float64   `gorm:"column:amount;type:numeric;not null" json:"amount"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Deposit) TableName() string {
	return "deposits"
}
