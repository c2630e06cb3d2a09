// Package user implements accounts: registration, login, token
// refresh, profile and device token management.
package user

import (
	"golang.org/x/crypto/bcrypt"

	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/dto/respond"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"
	jwtutil "beacon_chat_server/pkg/util/jwt"
	"beacon_chat_server/pkg/util/random"
)

// Service implements account operations.
type Service struct {
	repos *repository.Repositories
}

// NewService creates the user service.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// Register creates an account and signs the user in.
func (s *Service) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "hash password")
	}
	user := model.UserInfo{
		Uuid:     "U" + random.GetNowAndLenRandomString(13),
		Username: req.Username,
		Password: string(hash),
		Nickname: req.Nickname,
	}
	if err := s.repos.User.Create(&user); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.New(errorx.CodeConflict, "username already taken")
		}
		return nil, err
	}
	return s.loginRespond(&user)
}

// Login exchanges credentials for a token pair. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByUsername(req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "invalid username or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, errorx.New(errorx.CodeUnauthorized, "invalid username or password")
	}
	return s.loginRespond(user)
}

// Refresh rotates a refresh token into a new token pair.
func (s *Service) Refresh(refreshToken string) (*respond.RefreshTokenRespond, error) {
	claims, err := jwtutil.ParseToken(refreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "invalid refresh token")
	}
	if sub, _ := claims.GetSubject(); sub != "refresh_token" {
		return nil, errorx.New(errorx.CodeUnauthorized, "not a refresh token")
	}
	// The account may have been deleted since the token was issued.
	if _, err := s.repos.User.FindByUuid(claims.UserID); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "account no longer exists")
		}
		return nil, err
	}

	access, err := jwtutil.GenerateAccessToken(claims.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "issue access token")
	}
	refresh, _, err := jwtutil.GenerateRefreshToken(claims.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "issue refresh token")
	}
	return &respond.RefreshTokenRespond{AccessToken: access, RefreshToken: refresh}, nil
}

// GetProfile returns the caller's public profile.
func (s *Service) GetProfile(userUuid string) (*respond.UserInfoRespond, error) {
	user, err := s.repos.User.FindByUuid(userUuid)
	if err != nil {
		return nil, err
	}
	return &respond.UserInfoRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}, nil
}

// UpdateProfile mutates the caller's nickname and avatar. Empty fields
// keep their current value.
func (s *Service) UpdateProfile(userUuid string, req request.UpdateUserInfoRequest) (*respond.UserInfoRespond, error) {
	user, err := s.repos.User.FindByUuid(userUuid)
	if err != nil {
		return nil, err
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if err := s.repos.User.Update(user); err != nil {
		return nil, err
	}
	return &respond.UserInfoRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}, nil
}

// RegisterDevice stores an Expo push token for the caller's device.
// The same token re-registered by another account moves to it.
func (s *Service) RegisterDevice(userUuid string, req request.RegisterDeviceRequest) error {
	return s.repos.DeviceToken.Upsert(&model.DeviceToken{
		UserUuid: userUuid,
		Token:    req.Token,
		Platform: req.Platform,
	})
}

func (s *Service) loginRespond(user *model.UserInfo) (*respond.LoginRespond, error) {
	access, err := jwtutil.GenerateAccessToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "issue access token")
	}
	refresh, _, err := jwtutil.GenerateRefreshToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "issue refresh token")
	}
	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		Username:     user.Username,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
