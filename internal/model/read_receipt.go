package model

import (
	"time"

	"gorm.io/gorm"
)

// ReadReceipt records the first time a user observed a message.
// First read wins: the row is never updated once created.
type ReadReceipt struct {
	gorm.Model
	MessageUuid int64     `gorm:"column:message_uuid;uniqueIndex:uk_msg_reader;type:bigint;not null;comment:message snowflake"`
	UserUuid    string    `gorm:"column:user_uuid;uniqueIndex:uk_msg_reader;type:char(20);not null;comment:reading user"`
	ReadAt      time.Time `gorm:"column:read_at;not null;comment:first observation time"`
}

func (ReadReceipt) TableName() string {
	return "read_receipt"
}
