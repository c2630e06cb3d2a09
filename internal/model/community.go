package model

import (
	"gorm.io/gorm"
)

// Community groups channels under a shared roster and a single owner.
// A community always has at least one channel; the default channel is
// created in the same transaction as the community itself.
// Uuid format: "S" + timestamp/random suffix.
type Community struct {
	gorm.Model
	Uuid    string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:community uuid"`
	Name    string `gorm:"column:name;type:varchar(64);not null;comment:community name"`
	OwnerId string `gorm:"column:owner_id;index;type:char(20);not null;comment:owner user uuid"`
	Avatar  string `gorm:"column:avatar;type:varchar(255);comment:icon url"`
}

func (Community) TableName() string {
	return "community"
}
