package model

import (
	"time"
)

// Friendship states.
const (
	ContactStatusPending  int8 = 0
	ContactStatusAccepted int8 = 1
)

// Contact is a directional friendship row: UserId sent the request to
// FriendId. One row per pair; acceptance flips Status. Removal is a
// hard delete so the pair can form again later.
type Contact struct {
	Id        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserId    string `gorm:"column:user_id;uniqueIndex:uk_user_friend;index;type:char(20);not null;comment:requesting user"`
	FriendId  string `gorm:"column:friend_id;uniqueIndex:uk_user_friend;index;type:char(20);not null;comment:requested user"`
	Status    int8   `gorm:"column:status;not null;comment:0 pending 1 accepted"`
}

func (Contact) TableName() string {
	return "contact"
}
