package respond

// FriendRespond is one entry of the friends list. Status is "accepted"
// or "pending"; Incoming marks pending requests awaiting the caller.
type FriendRespond struct {
	UserId   string `json:"userId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
	Incoming bool   `json:"incoming,omitempty"`
}

// FriendsRespond splits accepted friendships from pending requests.
type FriendsRespond struct {
	Friends []FriendRespond `json:"friends"`
	Pending []FriendRespond `json:"pending"`
}
