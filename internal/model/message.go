package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Message content types. Only MessageTypeText requires non-empty content;
// the rest carry their payload location in Metadata.
const (
	MessageTypeText    = "text"
	MessageTypeImage   = "image"
	MessageTypeVideo   = "video"
	MessageTypeFile    = "file"
	MessageTypeVoice   = "voice"
	MessageTypeGif     = "gif"
	MessageTypeSticker = "sticker"
)

// ValidMessageType reports whether t is one of the fixed content types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo,
		MessageTypeFile, MessageTypeVoice, MessageTypeGif, MessageTypeSticker:
		return true
	}
	return false
}

// Message is one entry in a chat.
//
// SenderUuid goes null when the author account is removed; the message
// itself survives and renders with an anonymous sender. DeletedTime is a
// one-way switch: once set the content is frozen and edits are rejected.
// EditedAt moves forward on every successful edit.
type Message struct {
	gorm.Model
	Uuid       int64          `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:snowflake id"`
	ChatUuid   string         `gorm:"column:chat_uuid;index;type:char(20);not null;comment:owning chat"`
	SenderUuid sql.NullString `gorm:"column:sender_uuid;index;type:char(20);comment:author, null when account removed"`
	Type       string         `gorm:"column:type;type:varchar(10);not null;comment:content type"`
	Content    string         `gorm:"column:content;type:TEXT;comment:text content"`
	Metadata   string         `gorm:"column:metadata;type:TEXT;comment:structured payload, json"`
	ReplyTo    sql.NullInt64  `gorm:"column:reply_to;type:bigint;comment:replied message snowflake"`
	EditedAt   sql.NullTime   `gorm:"column:edited_at;comment:last edit time"`
	// DeletedTime is the message-level soft delete, distinct from
	// gorm.Model.DeletedAt so deleted messages stay queryable.
	DeletedTime sql.NullTime `gorm:"column:deleted_time;comment:soft delete time, terminal"`
}

func (Message) TableName() string {
	return "message"
}

// Deleted reports whether the message reached its terminal state.
func (m *Message) Deleted() bool {
	return m.DeletedTime.Valid
}
