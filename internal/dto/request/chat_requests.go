package request

// CreateDirectChatRequest opens (or re-opens) the direct chat with a user.
type CreateDirectChatRequest struct {
	UserId string `json:"userId" binding:"required"`
}

// CreateGroupChatRequest creates a group chat with an initial roster.
// The caller is always included.
type CreateGroupChatRequest struct {
	Name      string   `json:"name" binding:"required,max=64"`
	MemberIds []string `json:"memberIds" binding:"omitempty,dive,required"`
}

// AddChatMemberRequest adds a user to a group chat roster.
type AddChatMemberRequest struct {
	UserId string `json:"userId" binding:"required"`
}

// SetChatNicknameRequest sets the caller's per-chat nickname override.
type SetChatNicknameRequest struct {
	Nickname string `json:"nickname" binding:"omitempty,max=32"`
}
