package respond

// ChatRespond is the chat container shape. Kind is "direct", "group" or
// "channel"; CommunityId is set for channels only.
type ChatRespond struct {
	Uuid        string `json:"uuid"`
	Kind        string `json:"kind"`
	Name        string `json:"name,omitempty"`
	CommunityId string `json:"communityId,omitempty"`
}

// ChatMemberRespond is one roster entry with the resolved display name.
type ChatMemberRespond struct {
	UserId   string `json:"userId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	JoinedAt string `json:"joinedAt"`
}
