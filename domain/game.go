package domain

import "time"

type GameType string

const (
	GameTypeSlot   GameType = "slot"
	GameTypeTable  GameType = "table"
	GameTypeLive   GameType = "live"
	GameTypeSports GameType = "sports"
)

type Game struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Type      GameType  `gorm:"column:game_type;not null" json:"type"`
	IsEnabled bool      `gorm:"column:is_enabled;default:true" json:"is_enabled"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Game) TableName() string {
	return "games"
}

// GameRound is one settled wager, the raw material for play-behavior features.
type GameRound struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PlayerID  uint      `gorm:"column:player_id;not null;index" json:"player_id"`
	GameID    uint64    `gorm:"column:game_id;not null;index" json:"game_id"`
	Wager     float64   `gorm:"column:wager;type:numeric;not null" json:"wager"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GameRound) TableName() string {
	return "game_rounds"
}
