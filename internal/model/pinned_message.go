package model

import (
	"time"
)

// PinnedMessage marks a message as pinned in its chat. The unique index
// on the message uuid keeps a message pinned at most once; re-pinning is
// a no-op success at the service layer. Unpinning removes the row
// outright so the message can be pinned again.
type PinnedMessage struct {
	Id          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MessageUuid int64  `gorm:"column:message_uuid;uniqueIndex;type:bigint;not null;comment:pinned message snowflake"`
	ChatUuid    string `gorm:"column:chat_uuid;index;type:char(20);not null;comment:owning chat"`
	PinnedBy    string `gorm:"column:pinned_by;type:char(20);not null;comment:pinning user"`
}

func (PinnedMessage) TableName() string {
	return "pinned_message"
}
