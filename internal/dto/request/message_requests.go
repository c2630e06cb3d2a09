package request

// SendMessageRequest creates a message in a chat. Content is required
// for text messages only; other types carry their payload in Metadata.
// ReplyTo is the snowflake (as string) of the message being replied to.
type SendMessageRequest struct {
	Content  string `json:"content" binding:"omitempty"`
	Type     string `json:"type" binding:"required,oneof=text image video file voice gif sticker"`
	Metadata string `json:"metadata" binding:"omitempty"`
	ReplyTo  string `json:"replyTo" binding:"omitempty"`
}

// EditMessageRequest replaces the content of an existing text message.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ReactRequest adds an emoji reaction.
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

// GetMessageListRequest is the history pagination query.
// Before is a message snowflake cursor; results come back oldest first.
type GetMessageListRequest struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Before string `form:"before" binding:"omitempty"`
}
