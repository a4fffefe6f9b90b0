package dto

import "time"

// AddBoostRequest grants boost quantity to a player. Either the catalog
// boost id or its type may be given. Amount defaults to 1 when omitted;
// negative amounts are rejected by the engine, not the validator, so
// they surface as constraint violations.
type AddBoostRequest struct {
	BoostID   string `json:"boost_id" validate:"omitempty,uuid"`
	BoostType string `json:"boost_type" validate:"omitempty,oneof=double_points speed shield"`
	Amount    *int   `json:"amount"`
}

type LevelResultRequest struct {
	Score     int  `json:"score"`
	Completed bool `json:"completed"`
}

type PlayerBoostResponse struct {
	BoostID     string    `json:"boost_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      int       `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type PlayerLevelResponse struct {
	LevelID   string     `json:"level_id"`
	Title     string     `json:"title"`
	Order     int        `json:"order"`
	Score     int        `json:"score"`
	Completed *time.Time `json:"completed"`
}

type PlayerPrizeResponse struct {
	PrizeID    string    `json:"prize_id"`
	Title      string    `json:"title"`
	ReceivedAt time.Time `json:"received_at"`
}

type PlayerProgressResponse struct {
	PlayerID   string                `json:"player_id"`
	Points     int                   `json:"points"`
	FirstLogin *time.Time            `json:"first_login"`
	LastLogin  *time.Time            `json:"last_login"`
	Boosts     []PlayerBoostResponse `json:"boosts"`
	Levels     []PlayerLevelResponse `json:"levels"`
	Prizes     []PlayerPrizeResponse `json:"prizes"`
}

type GrantPrizesResponse struct {
	Granted int `json:"granted"`
}

type CompleteLevelResponse struct {
	PlayerID  string     `json:"player_id"`
	LevelID   string     `json:"level_id"`
	Score     int        `json:"score"`
	Completed *time.Time `json:"completed"`
	Granted   int        `json:"granted"`
}
