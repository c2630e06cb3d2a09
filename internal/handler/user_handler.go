package handler

import (
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/infrastructure/middleware"
	"beacon_chat_server/internal/service/user"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the authenticated profile endpoints.
type UserHandler struct {
	users *user.Service
}

// NewUserHandler creates the user handler.
func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe returns the caller's profile.
// GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	rsp, err := h.users.GetProfile(middleware.CurrentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// UpdateMe mutates the caller's profile.
// PUT /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req request.UpdateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.users.UpdateProfile(middleware.CurrentUser(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// RegisterDevice stores an Expo push token for the caller.
// POST /users/me/devices
func (h *UserHandler) RegisterDevice(c *gin.Context) {
	var req request.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.users.RegisterDevice(middleware.CurrentUser(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
