// model/player.go
package model

import "time"

type Player struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	FirstLogin *time.Time `json:"first_login"`
	LastLogin  *time.Time `json:"last_login"`
	Points     int        `json:"points" gorm:"not null;default:0;check:points >= 0"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PlayerBoost is the accumulated quantity of one boost type held by a
// player, not a log of grants. Repeated grants increment Amount in
// place; the composite key keeps it to one row per (player, boost).
type PlayerBoost struct {
	PlayerID  string    `json:"player_id" gorm:"primaryKey"`
	BoostID   string    `json:"boost_id" gorm:"primaryKey"`
	Amount    int       `json:"amount" gorm:"not null;check:amount >= 0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`

	Player Player `json:"-" gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
	Boost  Boost  `json:"-" gorm:"foreignKey:BoostID;constraint:OnDelete:CASCADE"`
}

// PlayerLevel holds one row per (player, level). Re-attempts mutate the
// row; Completed stays null until the level has been beaten once.
type PlayerLevel struct {
	PlayerID  string     `json:"player_id" gorm:"primaryKey"`
	LevelID   string     `json:"level_id" gorm:"primaryKey"`
	Completed *time.Time `json:"completed" gorm:"index"`
	Score     int        `json:"score" gorm:"not null;default:0;check:score >= 0"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Player Player `json:"-" gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
	Level  Level  `json:"-" gorm:"foreignKey:LevelID;constraint:OnDelete:CASCADE"`
}

// PlayerPrize is a grant event. The composite key guarantees a player
// receives a given prize at most once no matter how many levels would
// award it.
type PlayerPrize struct {
	PlayerID   string    `json:"player_id" gorm:"primaryKey"`
	PrizeID    string    `json:"prize_id" gorm:"primaryKey"`
	ReceivedAt time.Time `json:"received_at" gorm:"not null"`

	Player Player `json:"-" gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
	Prize  Prize  `json:"-" gorm:"foreignKey:PrizeID;constraint:OnDelete:CASCADE"`
}
