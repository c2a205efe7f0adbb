package models

import (
	"time"
)

// Player is an account that owns villages. Authentication and wallet
// binding live outside this service; only identity matters here.
type Player struct {
	ID          uint      `gorm:"primaryKey"`
	Username    string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	DisplayName string    `gorm:"type:varchar(255)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Player) TableName() string {
	return "players"
}
