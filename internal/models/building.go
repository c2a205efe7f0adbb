package models

import (
	"time"

	"gorm.io/gorm"
)

// Building type constants. One row per (village, type) exists from village
// creation onward; only the Queue Resolver increments Level.
const (
	BuildingMain      = "main"
	BuildingBarracks  = "barracks"
	BuildingFarm      = "farm"
	BuildingWarehouse = "warehouse"
	BuildingWall      = "wall"
	BuildingLumber    = "lumber"
	BuildingClayPit   = "clay_pit"
	BuildingIronMine  = "iron_mine"
	BuildingMarket    = "market"
	BuildingHall      = "hall"
	BuildingSmithy    = "smithy"
)

// AllBuildingTypes lists every building type in creation order.
var AllBuildingTypes = []string{
	BuildingMain,
	BuildingBarracks,
	BuildingFarm,
	BuildingWarehouse,
	BuildingWall,
	BuildingLumber,
	BuildingClayPit,
	BuildingIronMine,
	BuildingMarket,
	BuildingHall,
	BuildingSmithy,
}

// IsValidBuildingType reports whether t is a known building type.
func IsValidBuildingType(t string) bool {
	for _, known := range AllBuildingTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Building struct {
	ID        uint       `gorm:"primaryKey"`
	VillageID uint       `gorm:"not null;uniqueIndex:idx_village_building"`
	Type      string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_village_building"`
	Level     int        `gorm:"default:0;not null"`
	Upgrading bool       `gorm:"default:false;not null"`
	FinishAt  *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// BeforeSave validates type and level bounds.
func (b *Building) BeforeSave(tx *gorm.DB) error {
	if !IsValidBuildingType(b.Type) {
		return gorm.ErrInvalidData
	}
	if b.Level < 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Building) TableName() string {
	return "buildings"
}
