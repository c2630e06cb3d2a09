// Package router registers the HTTP routes.
package router

import (
	"beacon_chat_server/internal/handler"
	"beacon_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router binds the handler aggregate to the gin engine.
type Router struct {
	handlers *handler.Handlers
}

// NewRouter creates the router over the handler aggregate.
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes mounts every route group. Everything except
// register/login/refresh sits behind bearer auth; the websocket
// upgrade authenticates its own token before upgrading.
func (rt *Router) RegisterRoutes(engine *gin.Engine) {
	h := rt.handlers

	auth := engine.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	engine.GET("/ws", h.Ws.Connect)

	api := engine.Group("", middleware.JWTAuth())

	users := api.Group("/users")
	{
		users.GET("/me", h.User.GetMe)
		users.PUT("/me", h.User.UpdateMe)
		users.POST("/me/devices", h.User.RegisterDevice)
	}

	chats := api.Group("/chats")
	{
		chats.GET("", h.Chat.ListMine)
		chats.POST("/direct", h.Chat.CreateDirect)
		chats.POST("/group", h.Chat.CreateGroup)
		chats.GET("/:chatId/members", h.Chat.ListMembers)
		chats.POST("/:chatId/members", h.Chat.AddMember)
		chats.DELETE("/:chatId/members/me", h.Chat.Leave)
		chats.PUT("/:chatId/nickname", h.Chat.SetNickname)
	}

	// One param name for the whole /messages tree: gin refuses mixed
	// wildcard names on the same segment. Handlers read :id as a chat
	// uuid or a message snowflake depending on the route.
	messages := api.Group("/messages")
	{
		messages.GET("/pins/:id", h.Message.ListPins)
		messages.GET("/:id", h.Message.List)
		messages.POST("/:id", h.Message.Send)
		messages.PUT("/:id", h.Message.Edit)
		messages.DELETE("/:id", h.Message.Delete)
		messages.POST("/:id/react", h.Message.React)
		messages.DELETE("/:id/react/:emoji", h.Message.Unreact)
		messages.POST("/:id/read", h.Message.MarkRead)
		messages.POST("/:id/pin", h.Message.Pin)
		messages.DELETE("/:id/pin", h.Message.Unpin)
	}

	communities := api.Group("/communities")
	{
		communities.POST("", h.Community.Create)
		communities.GET("/:id", h.Community.Get)
		communities.GET("/:id/channels", h.Community.ListChannels)
		communities.POST("/:id/channels", h.Community.CreateChannel)
		communities.GET("/:id/members", h.Community.ListMembers)
		communities.DELETE("/:id/members/:userId", h.Community.Kick)
		communities.POST("/:id/leave", h.Community.Leave)
		communities.POST("/:id/transfer", h.Community.TransferOwnership)
		communities.POST("/:id/invites", h.Community.CreateInvite)
		communities.GET("/:id/invites", h.Community.ListInvites)
	}

	channels := api.Group("/channels")
	{
		channels.PUT("/:chatId", h.Community.RenameChannel)
		channels.DELETE("/:chatId", h.Community.DeleteChannel)
	}

	api.POST("/invites/:code/join", h.Community.RedeemInvite)

	friends := api.Group("/friends")
	{
		friends.GET("", h.Contact.List)
		friends.POST("/:userId", h.Contact.Request)
		friends.PUT("/:userId/accept", h.Contact.Accept)
		friends.DELETE("/:userId", h.Contact.Remove)
	}
}
