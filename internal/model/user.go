// Package model defines the database entities.
package model

import (
	"gorm.io/gorm"
)

// UserInfo is the account record.
// Uuid format: "U" + timestamp/random suffix.
type UserInfo struct {
	gorm.Model
	Uuid     string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:user uuid"`
	Username string `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:unique handle"`
	Password string `gorm:"column:password;type:varchar(100);not null;comment:bcrypt hash"`
	Nickname string `gorm:"column:nickname;type:varchar(32);not null;comment:display name"`
	Avatar   string `gorm:"column:avatar;type:varchar(255);comment:avatar url"`
}

func (UserInfo) TableName() string {
	return "user_info"
}
