// Package community manages communities, their channels, rosters and
// invites. Channel access control lives in the membership service; this
// package owns the owner-only administration paths.
package community

import (
	"database/sql"
	"time"

	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/dto/respond"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"
	"beacon_chat_server/pkg/util/random"

	"github.com/google/uuid"
)

// Service implements community operations.
type Service struct {
	repos *repository.Repositories
}

// NewService creates the community service.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// CreateCommunity creates the community, its default "general" channel
// and the owner's membership in one transaction, so a community is
// never observable without a channel.
func (s *Service) CreateCommunity(ownerUuid string, req request.CreateCommunityRequest) (*respond.CommunityRespond, error) {
	community := model.Community{
		Uuid:    "S" + random.GetNowAndLenRandomString(13),
		Name:    req.Name,
		OwnerId: ownerUuid,
		Avatar:  req.Avatar,
	}
	channel := model.Chat{
		Uuid:        "C" + random.GetNowAndLenRandomString(13),
		Kind:        model.ChatKindChannel,
		Name:        "general",
		CommunityId: community.Uuid,
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Community.Create(&community); err != nil {
			return err
		}
		if err := tx.Chat.Create(&channel); err != nil {
			return err
		}
		return tx.CommunityMember.Create(&model.CommunityMember{
			CommunityUuid: community.Uuid,
			UserUuid:      ownerUuid,
		})
	})
	if err != nil {
		return nil, err
	}
	return communityRespond(&community, []model.Chat{channel}), nil
}

// GetCommunity returns the community with its channels. Member-only.
func (s *Service) GetCommunity(communityUuid, callerUuid string) (*respond.CommunityRespond, error) {
	community, err := s.requireMember(communityUuid, callerUuid)
	if err != nil {
		return nil, err
	}
	channels, err := s.repos.Chat.FindByCommunityUuid(communityUuid)
	if err != nil {
		return nil, err
	}
	return communityRespond(community, channels), nil
}

// ListChannels returns the community's channels. Member-only.
func (s *Service) ListChannels(communityUuid, callerUuid string) ([]respond.ChatRespond, error) {
	if _, err := s.requireMember(communityUuid, callerUuid); err != nil {
		return nil, err
	}
	channels, err := s.repos.Chat.FindByCommunityUuid(communityUuid)
	if err != nil {
		return nil, err
	}
	result := make([]respond.ChatRespond, 0, len(channels))
	for _, ch := range channels {
		result = append(result, chatRespond(&ch))
	}
	return result, nil
}

// CreateChannel adds a channel. Owner-only.
func (s *Service) CreateChannel(communityUuid, callerUuid, name string) (*respond.ChatRespond, error) {
	if _, err := s.requireOwner(communityUuid, callerUuid); err != nil {
		return nil, err
	}
	channel := model.Chat{
		Uuid:        "C" + random.GetNowAndLenRandomString(13),
		Kind:        model.ChatKindChannel,
		Name:        name,
		CommunityId: communityUuid,
	}
	if err := s.repos.Chat.Create(&channel); err != nil {
		return nil, err
	}
	rsp := chatRespond(&channel)
	return &rsp, nil
}

// RenameChannel renames a channel. Owner-only, unlike pinning which is
// member-wide.
func (s *Service) RenameChannel(chatUuid, callerUuid, name string) (*respond.ChatRespond, error) {
	channel, err := s.requireChannelOwner(chatUuid, callerUuid)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Chat.UpdateName(chatUuid, name); err != nil {
		return nil, err
	}
	channel.Name = name
	rsp := chatRespond(channel)
	return &rsp, nil
}

// DeleteChannel removes a channel. Owner-only; the last channel cannot
// go, a community always keeps at least one.
func (s *Service) DeleteChannel(chatUuid, callerUuid string) error {
	channel, err := s.requireChannelOwner(chatUuid, callerUuid)
	if err != nil {
		return err
	}
	count, err := s.repos.Chat.CountByCommunityUuid(channel.CommunityId)
	if err != nil {
		return err
	}
	if count <= 1 {
		return errorx.New(errorx.CodeInvalidParam, "cannot delete the community's last channel")
	}
	return s.repos.Chat.SoftDeleteByUuid(chatUuid)
}

// ListMembers returns the roster with resolved profiles. Member-only.
func (s *Service) ListMembers(communityUuid, callerUuid string) ([]respond.CommunityMemberRespond, error) {
	if _, err := s.requireMember(communityUuid, callerUuid); err != nil {
		return nil, err
	}
	members, err := s.repos.CommunityMember.FindByCommunityUuid(communityUuid)
	if err != nil {
		return nil, err
	}
	userUuids := make([]string, 0, len(members))
	for _, m := range members {
		userUuids = append(userUuids, m.UserUuid)
	}
	users, err := s.repos.User.FindByUuids(userUuids)
	if err != nil {
		return nil, err
	}
	byUuid := make(map[string]model.UserInfo, len(users))
	for _, u := range users {
		byUuid[u.Uuid] = u
	}

	result := make([]respond.CommunityMemberRespond, 0, len(members))
	for _, m := range members {
		entry := respond.CommunityMemberRespond{
			UserId:   m.UserUuid,
			JoinedAt: m.CreatedAt.Format(time.RFC3339),
		}
		if u, ok := byUuid[m.UserUuid]; ok {
			entry.Nickname = u.Nickname
			entry.Avatar = u.Avatar
		}
		result = append(result, entry)
	}
	return result, nil
}

// Kick removes a member. Owner-only; the owner cannot be kicked.
func (s *Service) Kick(communityUuid, callerUuid, targetUuid string) error {
	community, err := s.requireOwner(communityUuid, callerUuid)
	if err != nil {
		return err
	}
	if targetUuid == community.OwnerId {
		return errorx.New(errorx.CodeInvalidParam, "the owner cannot be kicked")
	}
	if _, err := s.repos.CommunityMember.Find(communityUuid, targetUuid); err != nil {
		return err
	}
	return s.repos.CommunityMember.Delete(communityUuid, targetUuid)
}

// Leave removes the caller from the roster. The owner must transfer
// ownership first.
func (s *Service) Leave(communityUuid, callerUuid string) error {
	community, err := s.requireMember(communityUuid, callerUuid)
	if err != nil {
		return err
	}
	if community.OwnerId == callerUuid {
		return errorx.New(errorx.CodeInvalidParam, "transfer ownership before leaving")
	}
	return s.repos.CommunityMember.Delete(communityUuid, callerUuid)
}

// TransferOwnership hands the community to another member. Owner-only.
func (s *Service) TransferOwnership(communityUuid, callerUuid, targetUuid string) error {
	if _, err := s.requireOwner(communityUuid, callerUuid); err != nil {
		return err
	}
	if _, err := s.repos.CommunityMember.Find(communityUuid, targetUuid); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeInvalidParam, "new owner must already be a member")
		}
		return err
	}
	return s.repos.Community.UpdateOwner(communityUuid, targetUuid)
}

// CreateInvite issues an invite code. Any member may invite.
func (s *Service) CreateInvite(communityUuid, callerUuid string, req request.CreateInviteRequest) (*respond.InviteRespond, error) {
	if _, err := s.requireMember(communityUuid, callerUuid); err != nil {
		return nil, err
	}
	invite := model.Invite{
		Code:          uuid.NewString(),
		CommunityUuid: communityUuid,
		CreatorUuid:   callerUuid,
		MaxUses:       req.MaxUses,
	}
	if req.ExpiresInHours > 0 {
		invite.ExpiresAt = sql.NullTime{
			Time:  time.Now().Add(time.Duration(req.ExpiresInHours) * time.Hour),
			Valid: true,
		}
	}
	if err := s.repos.Invite.Create(&invite); err != nil {
		return nil, err
	}
	return inviteRespond(&invite), nil
}

// ListInvites returns a community's invites. Owner-only.
func (s *Service) ListInvites(communityUuid, callerUuid string) ([]respond.InviteRespond, error) {
	if _, err := s.requireOwner(communityUuid, callerUuid); err != nil {
		return nil, err
	}
	invites, err := s.repos.Invite.FindByCommunityUuid(communityUuid)
	if err != nil {
		return nil, err
	}
	result := make([]respond.InviteRespond, 0, len(invites))
	for _, inv := range invites {
		result = append(result, *inviteRespond(&inv))
	}
	return result, nil
}

// RedeemInvite consumes a use and joins the caller. The check and the
// increment run as one guarded statement inside the transaction, so
// two racing redemptions of the last slot cannot both land. Joining a
// community the caller is already in succeeds without consuming a use.
func (s *Service) RedeemInvite(code, callerUuid string) (*respond.CommunityRespond, error) {
	invite, err := s.repos.Invite.FindByCode(code)
	if err != nil {
		return nil, err
	}
	community, err := s.repos.Community.FindByUuid(invite.CommunityUuid)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.CommunityMember.Find(invite.CommunityUuid, callerUuid); err == nil {
		channels, err := s.repos.Chat.FindByCommunityUuid(invite.CommunityUuid)
		if err != nil {
			return nil, err
		}
		return communityRespond(community, channels), nil
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		consumed, err := tx.Invite.ConsumeUse(code)
		if err != nil {
			return err
		}
		if !consumed {
			return errorx.New(errorx.CodeGone, "invite max uses reached or expired")
		}
		return tx.CommunityMember.Create(&model.CommunityMember{
			CommunityUuid: invite.CommunityUuid,
			UserUuid:      callerUuid,
		})
	})
	if err != nil {
		return nil, err
	}

	channels, err := s.repos.Chat.FindByCommunityUuid(invite.CommunityUuid)
	if err != nil {
		return nil, err
	}
	return communityRespond(community, channels), nil
}

func (s *Service) requireMember(communityUuid, callerUuid string) (*model.Community, error) {
	community, err := s.repos.Community.FindByUuid(communityUuid)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.CommunityMember.Find(communityUuid, callerUuid); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "not a member of this community")
		}
		return nil, err
	}
	return community, nil
}

func (s *Service) requireOwner(communityUuid, callerUuid string) (*model.Community, error) {
	community, err := s.repos.Community.FindByUuid(communityUuid)
	if err != nil {
		return nil, err
	}
	if community.OwnerId != callerUuid {
		return nil, errorx.New(errorx.CodeForbidden, "only the owner may do this")
	}
	return community, nil
}

func (s *Service) requireChannelOwner(chatUuid, callerUuid string) (*model.Chat, error) {
	channel, err := s.repos.Chat.FindByUuid(chatUuid)
	if err != nil {
		return nil, err
	}
	if !channel.IsChannel() {
		return nil, errorx.New(errorx.CodeInvalidParam, "chat is not a community channel")
	}
	if _, err := s.requireOwner(channel.CommunityId, callerUuid); err != nil {
		return nil, err
	}
	return channel, nil
}

func chatRespond(chat *model.Chat) respond.ChatRespond {
	kind := "direct"
	switch chat.Kind {
	case model.ChatKindGroup:
		kind = "group"
	case model.ChatKindChannel:
		kind = "channel"
	}
	return respond.ChatRespond{
		Uuid:        chat.Uuid,
		Kind:        kind,
		Name:        chat.Name,
		CommunityId: chat.CommunityId,
	}
}

func communityRespond(community *model.Community, channels []model.Chat) *respond.CommunityRespond {
	rsp := &respond.CommunityRespond{
		Uuid:    community.Uuid,
		Name:    community.Name,
		OwnerId: community.OwnerId,
		Avatar:  community.Avatar,
	}
	for _, ch := range channels {
		rsp.Channels = append(rsp.Channels, chatRespond(&ch))
	}
	return rsp
}

func inviteRespond(invite *model.Invite) *respond.InviteRespond {
	rsp := &respond.InviteRespond{
		Code:     invite.Code,
		MaxUses:  invite.MaxUses,
		UseCount: invite.UseCount,
	}
	if invite.ExpiresAt.Valid {
		rsp.ExpiresAt = invite.ExpiresAt.Time.Format(time.RFC3339)
	}
	return rsp
}
