package domain

// PlayerFeatures is an immutable behavioral snapshot produced by the feature
// provider. The engagement core only reads it; it is never persisted as-is.
type PlayerFeatures struct {
	PlayerID               uint       `json:"player_id"`
	Segment                Segment    `json:"segment"`
	AverageDepositAmount   float64    `json:"average_deposit_amount"`
	FavoriteGameType       GameType   `json:"favorite_game_type"`
	WageringCompletionRate float64    `json:"wagering_completion_rate"` // 0..1
	BonusUsageRate         float64    `json:"bonus_usage_rate"`         // 0..1
	PreferredBonusType     *BonusType `json:"preferred_bonus_type,omitempty"`
	TopPlayedGameIDs       []uint64   `json:"top_played_game_ids"`
	DaysSinceRegistration  int        `json:"days_since_registration"`
}
