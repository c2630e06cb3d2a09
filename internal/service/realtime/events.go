// Package realtime implements the websocket gateway: authenticated
// connections, per-chat rooms, presence tracking and the broadcast bus
// feeding them.
package realtime

import "encoding/json"

// Server-to-client event names.
const (
	EventNewMessage       = "new_message"
	EventMessageEdited    = "message_edited"
	EventMessageDeleted   = "message_deleted"
	EventReactionUpdate   = "reaction_update"
	EventMessageRead      = "message_read"
	EventMessagePinned    = "message_pinned"
	EventMessageUnpinned  = "message_unpinned"
	EventUserTyping       = "user_typing"
	EventUserStopTyping   = "user_stop_typing"
	EventPresenceUpdate   = "presence:update"
	EventPresenceSnapshot = "presence:initial_state"
	EventError            = "error"
)

// Client-to-server event names.
const (
	clientJoinChat    = "join_chat"
	clientLeaveChat   = "leave_chat"
	clientTyping      = "typing"
	clientStopTyping  = "stop_typing"
	clientSendMessage = "send_message"
)

// Envelope is the wire frame in both directions. ChatId routes room
// events; an empty ChatId broadcasts to every connection.
type Envelope struct {
	Event  string          `json:"event"`
	ChatId string          `json:"chatId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// errorPayload is the data block of an error event. It carries the
// offending chat id so clients can correlate the failed request.
type errorPayload struct {
	Message string `json:"message"`
	ChatId  string `json:"chatId,omitempty"`
}

// presencePayload is the data block of a presence:update event.
type presencePayload struct {
	UserId string `json:"userId"`
	Status string `json:"status"`
}

// typingPayload is the data block of typing passthrough events.
type typingPayload struct {
	ChatId string `json:"chatId"`
	UserId string `json:"userId"`
}
