// model/catalog.go
package model

import "time"

// BoostType is the closed set of boost kinds the catalog carries.
type BoostType string

const (
	BoostTypeDoublePoints BoostType = "double_points"
	BoostTypeSpeed        BoostType = "speed"
	BoostTypeShield       BoostType = "shield"
)

// BoostTypeDescriptions maps each boost type to its fixed human-readable
// description. Descriptions live here, not on boost instances.
var BoostTypeDescriptions = map[BoostType]string{
	BoostTypeDoublePoints: "x2 points",
	BoostTypeSpeed:        "speed up",
	BoostTypeShield:       "shield from losses",
}

// AllBoostTypes returns the catalog types in their declared order.
func AllBoostTypes() []BoostType {
	return []BoostType{BoostTypeDoublePoints, BoostTypeSpeed, BoostTypeShield}
}

func (t BoostType) Valid() bool {
	_, ok := BoostTypeDescriptions[t]
	return ok
}

// Boost is a catalog entry, not a per-player grant. At most one row
// exists per type.
type Boost struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Type        BoostType `json:"type" gorm:"uniqueIndex;not null"`
	Description string    `json:"description" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// Level is ordered content. Order is a display/sequencing hint only;
// completion is never gated on it.
type Level struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Order     int       `json:"order" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

type Prize struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// LevelPrize declares that completing Level awards Prize. CreatedAt
// preserves association insertion order, which the export projection
// relies on when a level has several prizes.
type LevelPrize struct {
	LevelID   string    `json:"level_id" gorm:"primaryKey"`
	PrizeID   string    `json:"prize_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Level Level `json:"-" gorm:"foreignKey:LevelID;constraint:OnDelete:CASCADE"`
	Prize Prize `json:"-" gorm:"foreignKey:PrizeID;constraint:OnDelete:CASCADE"`
}
