package models

import (
	"time"

	"gorm.io/gorm"
)

// Troop type constants.
const (
	TroopSpearman = "spearman"
	TroopSwordman = "swordman"
	TroopArcher   = "archer"
	TroopKnight   = "knight"
)

// AllTroopTypes lists every troop type in creation order.
var AllTroopTypes = []string{
	TroopSpearman,
	TroopSwordman,
	TroopArcher,
	TroopKnight,
}

// IsValidTroopType reports whether t is a known troop type.
func IsValidTroopType(t string) bool {
	for _, known := range AllTroopTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TroopStock is the standing count of one troop type in one village.
// Created with amount 0 at village creation; incremented only by the
// Queue Resolver.
type TroopStock struct {
	ID        uint      `gorm:"primaryKey"`
	VillageID uint      `gorm:"not null;uniqueIndex:idx_village_troop"`
	Type      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_village_troop"`
	Amount    int       `gorm:"default:0;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeSave validates type and non-negative amount.
func (t *TroopStock) BeforeSave(tx *gorm.DB) error {
	if !IsValidTroopType(t.Type) {
		return gorm.ErrInvalidData
	}
	if t.Amount < 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

func (TroopStock) TableName() string {
	return "troop_stocks"
}
