// Package respond defines the HTTP/realtime response DTOs.
package respond

// SenderInfo is the resolved author block of a message. A removed
// account renders as an anonymous sender rather than failing the read.
type SenderInfo struct {
	Id       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// ReplySnippet is the preview of the replied-to message. When the
// target was soft-deleted afterwards the original content still renders,
// with Deleted flagged so clients can style it.
type ReplySnippet struct {
	Id         string `json:"id"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Deleted    bool   `json:"deleted"`
}

// ReactionGroup aggregates one emoji on one message: count plus the
// reacting user ids, so clients never reconcile deltas.
type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// MessageRespond is the fully hydrated message shape used by both the
// REST responses and the room broadcasts. Ids are snowflakes rendered
// as strings.
type MessageRespond struct {
	Id        string          `json:"id"`
	ChatId    string          `json:"chatId"`
	Sender    SenderInfo      `json:"sender"`
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	Metadata  string          `json:"metadata,omitempty"`
	ReplyTo   *ReplySnippet   `json:"replyTo,omitempty"`
	Reactions []ReactionGroup `json:"reactions"`
	CreatedAt string          `json:"createdAt"`
	EditedAt  string          `json:"editedAt,omitempty"`
	DeletedAt string          `json:"deletedAt,omitempty"`
}

// PinRespond carries a pinned message plus pin metadata.
type PinRespond struct {
	Message  MessageRespond `json:"message"`
	PinnedBy string         `json:"pinnedBy"`
	PinnedAt string         `json:"pinnedAt"`
}

// MessageDeletedRespond is the delete broadcast: id and time only,
// never the prior content.
type MessageDeletedRespond struct {
	Id        string `json:"id"`
	ChatId    string `json:"chatId"`
	DeletedAt string `json:"deletedAt"`
}

// ReactionUpdateRespond is the full current reaction set of a message.
type ReactionUpdateRespond struct {
	MessageId string          `json:"messageId"`
	ChatId    string          `json:"chatId"`
	Reactions []ReactionGroup `json:"reactions"`
}

// MessageReadRespond is the read-receipt broadcast.
type MessageReadRespond struct {
	MessageId string `json:"messageId"`
	ChatId    string `json:"chatId"`
	UserId    string `json:"userId"`
	ReadAt    string `json:"readAt"`
}

// MessageUnpinnedRespond is the unpin broadcast.
type MessageUnpinnedRespond struct {
	MessageId string `json:"messageId"`
	ChatId    string `json:"chatId"`
}
