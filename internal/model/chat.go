package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Chat kinds. A channel chat has CommunityId set and no roster of its
// own; direct and group chats own a ChatMember roster and leave
// CommunityId empty. Exactly one of the two membership sources applies.
const (
	ChatKindDirect  int8 = 0
	ChatKindGroup   int8 = 1
	ChatKindChannel int8 = 2
)

// Chat is any message container: direct, group, or community channel.
// Uuid format: "C" + timestamp/random suffix.
type Chat struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:chat uuid"`
	Kind        int8   `gorm:"column:kind;not null;comment:0 direct 1 group 2 channel"`
	Name        string `gorm:"column:name;type:varchar(64);comment:group/channel name, empty for direct"`
	CommunityId string `gorm:"column:community_id;index;type:char(20);comment:owning community, channels only"`
	// PairKey is the canonical "lowUuid:highUuid" pair for direct chats,
	// unique so the same pair never gets two direct chats. Null otherwise:
	// a unique index tolerates many nulls but not many empty strings.
	PairKey sql.NullString `gorm:"column:pair_key;type:varchar(48);index:uk_pair,unique;comment:canonical direct pair"`
}

func (Chat) TableName() string {
	return "chat"
}

// IsChannel reports whether membership resolves through the community roster.
func (c *Chat) IsChannel() bool {
	return c.Kind == ChatKindChannel
}
