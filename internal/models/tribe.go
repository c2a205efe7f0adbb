package models

import (
	"time"
)

type Tribe struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatorID   uint      `gorm:"not null"`
	Creator     Player    `gorm:"foreignKey:CreatorID"`
	Description string    `gorm:"type:text"`
	Points      int64     `gorm:"default:0;not null"` // For Ranking
	MemberCount int       `gorm:"default:1;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

type TribeMember struct {
	ID       uint      `gorm:"primaryKey"`
	TribeID  uint      `gorm:"not null;index:idx_tribe_member"`
	PlayerID uint      `gorm:"not null;index:idx_tribe_member"`
	Role     string    `gorm:"type:varchar(20);default:'member'"` // leader, elder, member
	JoinedAt time.Time `gorm:"autoCreateTime"`
	Tribe    Tribe     `gorm:"foreignKey:TribeID"`
	Player   Player    `gorm:"foreignKey:PlayerID"`
}

const (
	TribeRoleLeader = "leader"
	TribeRoleElder  = "elder"
	TribeRoleMember = "member"
)

// MaxTribeMembers caps tribe size.
const MaxTribeMembers = 50

func (Tribe) TableName() string {
	return "tribes"
}

func (TribeMember) TableName() string {
	return "tribe_members"
}
