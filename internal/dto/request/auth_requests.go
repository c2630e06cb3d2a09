// Package request defines the HTTP request DTOs with binding rules.
package request

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Nickname string `json:"nickname" binding:"required,max=32"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateUserInfoRequest mutates profile fields.
type UpdateUserInfoRequest struct {
	Nickname string `json:"nickname" binding:"omitempty,max=32"`
	Avatar   string `json:"avatar" binding:"omitempty,max=255"`
}

// RegisterDeviceRequest stores an Expo push token for the caller.
type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required,max=128"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android"`
}
