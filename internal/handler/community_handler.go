package handler

import (
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/infrastructure/middleware"
	"beacon_chat_server/internal/service/community"

	"github.com/gin-gonic/gin"
)

// CommunityHandler serves community and channel administration.
type CommunityHandler struct {
	communities *community.Service
}

// NewCommunityHandler creates the community handler.
func NewCommunityHandler(svc *community.Service) *CommunityHandler {
	return &CommunityHandler{communities: svc}
}

// Create creates a community with its default channel.
// POST /communities
func (h *CommunityHandler) Create(c *gin.Context) {
	var req request.CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.communities.CreateCommunity(middleware.CurrentUser(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, rsp)
}

// Get returns a community with its channels. Member only.
// GET /communities/:id
func (h *CommunityHandler) Get(c *gin.Context) {
	rsp, err := h.communities.GetCommunity(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// ListChannels lists a community's channels. Member only.
// GET /communities/:id/channels
func (h *CommunityHandler) ListChannels(c *gin.Context) {
	rsp, err := h.communities.ListChannels(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// CreateChannel adds a channel. Owner only.
// POST /communities/:id/channels
func (h *CommunityHandler) CreateChannel(c *gin.Context) {
	var req request.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.communities.CreateChannel(c.Param("id"), middleware.CurrentUser(c), req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, rsp)
}

// RenameChannel renames a channel. Owner only.
// PUT /channels/:chatId
func (h *CommunityHandler) RenameChannel(c *gin.Context) {
	var req request.RenameChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.communities.RenameChannel(c.Param("chatId"), middleware.CurrentUser(c), req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// DeleteChannel removes a channel, refusing to remove the last one.
// DELETE /channels/:chatId
func (h *CommunityHandler) DeleteChannel(c *gin.Context) {
	if err := h.communities.DeleteChannel(c.Param("chatId"), middleware.CurrentUser(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListMembers lists the community roster. Member only.
// GET /communities/:id/members
func (h *CommunityHandler) ListMembers(c *gin.Context) {
	rsp, err := h.communities.ListMembers(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Kick removes a member. Owner only; the owner cannot be kicked.
// DELETE /communities/:id/members/:userId
func (h *CommunityHandler) Kick(c *gin.Context) {
	if err := h.communities.Kick(c.Param("id"), middleware.CurrentUser(c), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Leave removes the caller from the community. The owner must transfer
// ownership first.
// POST /communities/:id/leave
func (h *CommunityHandler) Leave(c *gin.Context) {
	if err := h.communities.Leave(c.Param("id"), middleware.CurrentUser(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// TransferOwnership hands the community to another member. Owner only.
// POST /communities/:id/transfer
func (h *CommunityHandler) TransferOwnership(c *gin.Context) {
	var req request.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.communities.TransferOwnership(c.Param("id"), middleware.CurrentUser(c), req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// CreateInvite issues an invite code. Any member.
// POST /communities/:id/invites
func (h *CommunityHandler) CreateInvite(c *gin.Context) {
	var req request.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.communities.CreateInvite(c.Param("id"), middleware.CurrentUser(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, rsp)
}

// ListInvites lists issued invites. Owner only.
// GET /communities/:id/invites
func (h *CommunityHandler) ListInvites(c *gin.Context) {
	rsp, err := h.communities.ListInvites(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// RedeemInvite joins a community via an invite code.
// POST /invites/:code/join
func (h *CommunityHandler) RedeemInvite(c *gin.Context) {
	rsp, err := h.communities.RedeemInvite(c.Param("code"), middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
