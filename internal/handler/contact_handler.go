package handler

import (
	"beacon_chat_server/internal/infrastructure/middleware"
	"beacon_chat_server/internal/service/contact"

	"github.com/gin-gonic/gin"
)

// ContactHandler serves the friendship endpoints.
type ContactHandler struct {
	contacts *contact.Service
}

// NewContactHandler creates the contact handler.
func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{contacts: svc}
}

// Request sends a friend request.
// POST /friends/:userId
func (h *ContactHandler) Request(c *gin.Context) {
	if err := h.contacts.Request(middleware.CurrentUser(c), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Accept confirms a pending request from a user.
// PUT /friends/:userId/accept
func (h *ContactHandler) Accept(c *gin.Context) {
	if err := h.contacts.Accept(middleware.CurrentUser(c), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Remove rejects, withdraws, or unfriends.
// DELETE /friends/:userId
func (h *ContactHandler) Remove(c *gin.Context) {
	if err := h.contacts.Remove(middleware.CurrentUser(c), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// List returns accepted friends and pending incoming requests.
// GET /friends
func (h *ContactHandler) List(c *gin.Context) {
	rsp, err := h.contacts.List(middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
