package model

import (
	"time"
)

// Reaction is a (message, user, emoji) triple. The composite unique
// index makes duplicate adds a constraint hit, which the service layer
// treats as idempotent success. Removal is a hard delete so the same
// reaction can be re-added.
type Reaction struct {
	Id          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MessageUuid int64  `gorm:"column:message_uuid;uniqueIndex:uk_msg_user_emoji;type:bigint;not null;comment:message snowflake"`
	UserUuid    string `gorm:"column:user_uuid;uniqueIndex:uk_msg_user_emoji;type:char(20);not null;comment:reacting user"`
	Emoji       string `gorm:"column:emoji;uniqueIndex:uk_msg_user_emoji;type:varchar(32);not null;comment:emoji literal"`
}

func (Reaction) TableName() string {
	return "reaction"
}
