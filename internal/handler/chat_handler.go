package handler

import (
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/infrastructure/middleware"
	"beacon_chat_server/internal/service/chats"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves direct/group chat container endpoints.
type ChatHandler struct {
	chats *chats.Service
}

// NewChatHandler creates the chat handler.
func NewChatHandler(svc *chats.Service) *ChatHandler {
	return &ChatHandler{chats: svc}
}

// CreateDirect opens (or returns) the direct chat with a user.
// POST /chats/direct
func (h *ChatHandler) CreateDirect(c *gin.Context) {
	var req request.CreateDirectChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.chats.CreateDirect(middleware.CurrentUser(c), req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// CreateGroup creates a group chat.
// POST /chats/group
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.chats.CreateGroup(middleware.CurrentUser(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, rsp)
}

// ListMine lists the caller's direct and group chats.
// GET /chats
func (h *ChatHandler) ListMine(c *gin.Context) {
	rsp, err := h.chats.ListMine(middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// ListMembers lists a chat roster with resolved nicknames.
// GET /chats/:chatId/members
func (h *ChatHandler) ListMembers(c *gin.Context) {
	rsp, err := h.chats.ListMembers(c.Param("chatId"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// AddMember adds a user to a group chat.
// POST /chats/:chatId/members
func (h *ChatHandler) AddMember(c *gin.Context) {
	var req request.AddChatMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.chats.AddMember(c.Param("chatId"), middleware.CurrentUser(c), req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Leave removes the caller from a group chat.
// DELETE /chats/:chatId/members/me
func (h *ChatHandler) Leave(c *gin.Context) {
	if err := h.chats.Leave(c.Param("chatId"), middleware.CurrentUser(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// SetNickname sets the caller's per-chat nickname override.
// PUT /chats/:chatId/nickname
func (h *ChatHandler) SetNickname(c *gin.Context) {
	var req request.SetChatNicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.chats.SetNickname(c.Param("chatId"), middleware.CurrentUser(c), req.Nickname); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
