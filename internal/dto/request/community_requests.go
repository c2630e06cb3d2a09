package request

// CreateCommunityRequest creates a community with a default channel.
type CreateCommunityRequest struct {
	Name   string `json:"name" binding:"required,max=64"`
	Avatar string `json:"avatar" binding:"omitempty,max=255"`
}

// CreateChannelRequest adds a channel to a community. Owner only.
type CreateChannelRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

// RenameChannelRequest renames a channel. Owner only.
type RenameChannelRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

// CreateInviteRequest issues an invite code. MaxUses zero is unlimited.
type CreateInviteRequest struct {
	MaxUses        int `json:"maxUses" binding:"omitempty,min=0"`
	ExpiresInHours int `json:"expiresInHours" binding:"omitempty,min=0"`
}

// TransferOwnershipRequest hands the community to another member.
type TransferOwnershipRequest struct {
	UserId string `json:"userId" binding:"required"`
}
