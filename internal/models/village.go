package models

import (
	"time"

	"gorm.io/gorm"
)

// Resources is the four-axis resource balance of a village. Values are
// real-valued internally; display layers floor them.
type Resources struct {
	Wood float64 `gorm:"default:0;not null"`
	Clay float64 `gorm:"default:0;not null"`
	Iron float64 `gorm:"default:0;not null"`
	Food float64 `gorm:"default:0;not null"`
}

// Add returns r + other.
func (r Resources) Add(other Resources) Resources {
	return Resources{
		Wood: r.Wood + other.Wood,
		Clay: r.Clay + other.Clay,
		Iron: r.Iron + other.Iron,
		Food: r.Food + other.Food,
	}
}

// Scale returns r with every axis multiplied by f.
func (r Resources) Scale(f float64) Resources {
	return Resources{
		Wood: r.Wood * f,
		Clay: r.Clay * f,
		Iron: r.Iron * f,
		Food: r.Food * f,
	}
}

// CapAt clamps every axis to [0, capacity].
func (r Resources) CapAt(capacity float64) Resources {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > capacity {
			return capacity
		}
		return v
	}
	return Resources{
		Wood: clamp(r.Wood),
		Clay: clamp(r.Clay),
		Iron: clamp(r.Iron),
		Food: clamp(r.Food),
	}
}

// Covers reports whether r is axis-wise >= cost.
func (r Resources) Covers(cost Resources) bool {
	return r.Wood >= cost.Wood && r.Clay >= cost.Clay && r.Iron >= cost.Iron && r.Food >= cost.Food
}

// Village is one settlement on the world map. PlayerID is nil for
// barbarian (NPC) villages.
type Village struct {
	ID               uint      `gorm:"primaryKey"`
	Name             string    `gorm:"type:varchar(255);not null"`
	PlayerID         *uint     `gorm:"index"`
	X                int       `gorm:"not null;uniqueIndex:idx_village_coords"`
	Y                int       `gorm:"not null;uniqueIndex:idx_village_coords"`
	Resources        Resources `gorm:"embedded"`
	LastReconciledAt time.Time `gorm:"not null"`
	Points           int64     `gorm:"default:0;not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// IsBarbarian reports whether the village has no owning player.
func (v *Village) IsBarbarian() bool {
	return v.PlayerID == nil
}

// BeforeSave validates the resource invariant: never negative.
func (v *Village) BeforeSave(tx *gorm.DB) error {
	if v.Resources.Wood < 0 || v.Resources.Clay < 0 || v.Resources.Iron < 0 || v.Resources.Food < 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Village) TableName() string {
	return "villages"
}
