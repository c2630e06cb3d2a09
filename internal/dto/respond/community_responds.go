package respond

// CommunityRespond is the community shape with its channels.
type CommunityRespond struct {
	Uuid     string        `json:"uuid"`
	Name     string        `json:"name"`
	OwnerId  string        `json:"ownerId"`
	Avatar   string        `json:"avatar,omitempty"`
	Channels []ChatRespond `json:"channels,omitempty"`
}

// CommunityMemberRespond is one community roster entry.
type CommunityMemberRespond struct {
	UserId   string `json:"userId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	JoinedAt string `json:"joinedAt"`
}

// InviteRespond is an issued invite.
type InviteRespond struct {
	Code      string `json:"code"`
	MaxUses   int    `json:"maxUses"`
	UseCount  int    `json:"useCount"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}
