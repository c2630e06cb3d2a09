package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Invite is a redeemable community invite. MaxUses zero means unlimited.
// Redemption is a transactional check-and-increment so two simultaneous
// redemptions cannot both take the last slot.
type Invite struct {
	gorm.Model
	Code          string       `gorm:"column:code;uniqueIndex;type:char(36);not null;comment:invite code"`
	CommunityUuid string       `gorm:"column:community_uuid;index;type:char(20);not null;comment:target community"`
	CreatorUuid   string       `gorm:"column:creator_uuid;type:char(20);not null;comment:issuing user"`
	MaxUses       int          `gorm:"column:max_uses;default:0;comment:0 means unlimited"`
	UseCount      int          `gorm:"column:use_count;default:0;comment:successful redemptions"`
	ExpiresAt     sql.NullTime `gorm:"column:expires_at;comment:optional expiry"`
}

func (Invite) TableName() string {
	return "invite"
}
