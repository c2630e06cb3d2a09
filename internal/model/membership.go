package model

import (
	"time"
)

// Roster rows are hard-deleted: a removed membership must be creatable
// again, and a soft-delete tombstone would hold the unique index
// hostage. History lives on Message/Chat, not on join tables.

// ChatMember is the roster row for direct and group chats.
// At most one row per (chat, user).
type ChatMember struct {
	Id        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ChatUuid  string `gorm:"column:chat_uuid;uniqueIndex:uk_chat_user;type:char(20);not null;comment:chat uuid"`
	UserUuid  string `gorm:"column:user_uuid;uniqueIndex:uk_chat_user;index;type:char(20);not null;comment:user uuid"`
	Nickname  string `gorm:"column:nickname;type:varchar(32);comment:per-chat nickname override"`
}

func (ChatMember) TableName() string {
	return "chat_member"
}

// CommunityMember is the roster row for communities. Channel access is
// resolved against this table, never a per-channel roster.
// At most one row per (community, user).
type CommunityMember struct {
	Id            uint `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CommunityUuid string `gorm:"column:community_uuid;uniqueIndex:uk_community_user;type:char(20);not null;comment:community uuid"`
	UserUuid      string `gorm:"column:user_uuid;uniqueIndex:uk_community_user;index;type:char(20);not null;comment:user uuid"`
}

func (CommunityMember) TableName() string {
	return "community_member"
}
