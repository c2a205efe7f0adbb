package models

import (
	"time"
)

// ConstructionOrder is a pending building upgrade. Completion folds back
// into the Building row (level++, upgrading cleared) and removes the order.
type ConstructionOrder struct {
	ID           uint      `gorm:"primaryKey"`
	VillageID    uint      `gorm:"not null;index"`
	BuildingID   uint      `gorm:"not null"`
	BuildingType string    `gorm:"type:varchar(20);not null"`
	TargetLevel  int       `gorm:"not null"`
	FinishAt     time.Time `gorm:"not null;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (ConstructionOrder) TableName() string {
	return "construction_orders"
}

// TrainingOrder is a pending troop batch. Completion increments the troop
// stock and removes the order.
type TrainingOrder struct {
	ID        uint      `gorm:"primaryKey"`
	VillageID uint      `gorm:"not null;index"`
	TroopType string    `gorm:"type:varchar(20);not null"`
	Amount    int       `gorm:"not null"`
	FinishAt  time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TrainingOrder) TableName() string {
	return "training_orders"
}
