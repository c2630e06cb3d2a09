package handler

import (
	"strconv"

	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/infrastructure/middleware"
	"beacon_chat_server/internal/service/message"
	"beacon_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves the message lifecycle endpoints.
type MessageHandler struct {
	messages *message.Service
}

// NewMessageHandler creates the message handler.
func NewMessageHandler(svc *message.Service) *MessageHandler {
	return &MessageHandler{messages: svc}
}

// messageId parses the snowflake path parameter. Message ids travel as
// strings to survive javascript number precision.
func messageId(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorx.New(errorx.CodeInvalidParam, "invalid message id")
	}
	return id, nil
}

// List returns paginated history, oldest first.
// GET /messages/:chatId
func (h *MessageHandler) List(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	var before int64
	if req.Before != "" {
		parsed, err := strconv.ParseInt(req.Before, 10, 64)
		if err != nil {
			HandleError(c, errorx.New(errorx.CodeInvalidParam, "invalid before cursor"))
			return
		}
		before = parsed
	}
	rsp, err := h.messages.List(c.Param("id"), middleware.CurrentUser(c), req.Limit, before)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Send creates a message.
// POST /messages/:chatId
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.messages.Send(c.Param("id"), middleware.CurrentUser(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, rsp)
}

// Edit replaces the content of an own text message.
// PUT /messages/:messageId
func (h *MessageHandler) Edit(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.messages.Edit(id, middleware.CurrentUser(c), req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Delete soft-deletes an own message.
// DELETE /messages/:messageId
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	rsp, err := h.messages.Delete(id, middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// React adds an emoji reaction.
// POST /messages/:messageId/react
func (h *MessageHandler) React(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.messages.React(id, middleware.CurrentUser(c), req.Emoji)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Unreact removes the caller's emoji reaction.
// DELETE /messages/:messageId/react/:emoji
func (h *MessageHandler) Unreact(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	rsp, err := h.messages.Unreact(id, middleware.CurrentUser(c), c.Param("emoji"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// MarkRead records the caller's first read of a message.
// POST /messages/:messageId/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	rsp, err := h.messages.MarkRead(id, middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Pin pins a message to its chat.
// POST /messages/:messageId/pin
func (h *MessageHandler) Pin(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	rsp, err := h.messages.Pin(id, middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Unpin removes a pin.
// DELETE /messages/:messageId/pin
func (h *MessageHandler) Unpin(c *gin.Context) {
	id, err := messageId(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	rsp, err := h.messages.Unpin(id, middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// ListPins lists a chat's pinned messages.
// GET /messages/pins/:chatId
func (h *MessageHandler) ListPins(c *gin.Context) {
	rsp, err := h.messages.ListPins(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
