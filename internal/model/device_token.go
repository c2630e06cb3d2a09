package model

import (
	"time"
)

// DeviceToken stores an Expo push token for one of a user's devices.
// Tokens are upserted on registration and hard-deleted when Expo
// reports them unregistered, so the same token can come back after a
// reinstall.
type DeviceToken struct {
	Id        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserUuid  string `gorm:"column:user_uuid;index;type:char(20);not null;comment:owning user"`
	Token     string `gorm:"column:token;uniqueIndex;type:varchar(128);not null;comment:expo push token"`
	Platform  string `gorm:"column:platform;type:varchar(10);comment:ios or android"`
}

func (DeviceToken) TableName() string {
	return "device_token"
}
