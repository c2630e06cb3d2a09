package handler

import (
	"beacon_chat_server/internal/service/chats"
	"beacon_chat_server/internal/service/community"
	"beacon_chat_server/internal/service/contact"
	"beacon_chat_server/internal/service/message"
	"beacon_chat_server/internal/service/realtime"
	"beacon_chat_server/internal/service/user"
)

// Handlers aggregates every handler for the router.
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Chat      *ChatHandler
	Message   *MessageHandler
	Community *CommunityHandler
	Contact   *ContactHandler
	Ws        *WsHandler
}

// NewHandlers wires the handlers over the service layer.
func NewHandlers(
	users *user.Service,
	chatSvc *chats.Service,
	messages *message.Service,
	communities *community.Service,
	contacts *contact.Service,
	gateway *realtime.Gateway,
) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(users),
		User:      NewUserHandler(users),
		Chat:      NewChatHandler(chatSvc),
		Message:   NewMessageHandler(messages),
		Community: NewCommunityHandler(communities),
		Contact:   NewContactHandler(contacts),
		Ws:        NewWsHandler(gateway),
	}
}
