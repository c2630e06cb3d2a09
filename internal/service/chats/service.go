// Package chats manages direct and group chat containers and their
// rosters. Community channels are managed by the community service.
package chats

import (
	"database/sql"
	"time"

	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/dto/respond"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"
	"beacon_chat_server/pkg/util/random"
)

// Service implements chat container operations.
type Service struct {
	repos *repository.Repositories
}

// NewService creates the chats service.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// pairKey canonicalizes a user pair: lower uuid first, so both
// directions resolve to the same direct chat.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// CreateDirect opens the direct chat with another user, or returns the
// existing one: a pair owns at most one direct chat.
func (s *Service) CreateDirect(callerUuid, otherUuid string) (*respond.ChatRespond, error) {
	if otherUuid == callerUuid {
		return nil, errorx.New(errorx.CodeInvalidParam, "cannot open a direct chat with yourself")
	}
	if _, err := s.repos.User.FindByUuid(otherUuid); err != nil {
		return nil, err
	}

	key := pairKey(callerUuid, otherUuid)
	existing, err := s.repos.Chat.FindByPairKey(key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		rsp := chatRespond(existing)
		return &rsp, nil
	}

	chat := model.Chat{
		Uuid:    "C" + random.GetNowAndLenRandomString(13),
		Kind:    model.ChatKindDirect,
		PairKey: sql.NullString{String: key, Valid: true},
	}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Chat.Create(&chat); err != nil {
			return err
		}
		for _, u := range []string{callerUuid, otherUuid} {
			if err := tx.ChatMember.Create(&model.ChatMember{ChatUuid: chat.Uuid, UserUuid: u}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A racing create landed first; the unique pair key makes the
		// winner authoritative.
		if errorx.GetCode(err) == errorx.CodeConflict {
			raced, findErr := s.repos.Chat.FindByPairKey(key)
			if findErr == nil && raced != nil {
				rsp := chatRespond(raced)
				return &rsp, nil
			}
		}
		return nil, err
	}

	rsp := chatRespond(&chat)
	return &rsp, nil
}

// CreateGroup creates a named group with an initial roster. The caller
// is always on it.
func (s *Service) CreateGroup(callerUuid string, req request.CreateGroupChatRequest) (*respond.ChatRespond, error) {
	roster := map[string]struct{}{callerUuid: {}}
	for _, id := range req.MemberIds {
		roster[id] = struct{}{}
	}

	others := make([]string, 0, len(roster))
	for id := range roster {
		if id != callerUuid {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		users, err := s.repos.User.FindByUuids(others)
		if err != nil {
			return nil, err
		}
		if len(users) != len(others) {
			return nil, errorx.New(errorx.CodeInvalidParam, "memberIds contains unknown users")
		}
	}

	chat := model.Chat{
		Uuid: "C" + random.GetNowAndLenRandomString(13),
		Kind: model.ChatKindGroup,
		Name: req.Name,
	}
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Chat.Create(&chat); err != nil {
			return err
		}
		for id := range roster {
			if err := tx.ChatMember.Create(&model.ChatMember{ChatUuid: chat.Uuid, UserUuid: id}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rsp := chatRespond(&chat)
	return &rsp, nil
}

// AddMember adds a user to a group roster. Member-only; adding someone
// already on the roster is a no-op success.
func (s *Service) AddMember(chatUuid, callerUuid, targetUuid string) error {
	chat, err := s.requireGroupMember(chatUuid, callerUuid)
	if err != nil {
		return err
	}
	if chat.Kind != model.ChatKindGroup {
		return errorx.New(errorx.CodeInvalidParam, "members can only be added to group chats")
	}
	if _, err := s.repos.User.FindByUuid(targetUuid); err != nil {
		return err
	}
	err = s.repos.ChatMember.Create(&model.ChatMember{ChatUuid: chatUuid, UserUuid: targetUuid})
	if err != nil && errorx.GetCode(err) != errorx.CodeConflict {
		return err
	}
	return nil
}

// Leave removes the caller from a group roster. Direct chats have a
// fixed pair and cannot be left.
func (s *Service) Leave(chatUuid, callerUuid string) error {
	chat, err := s.requireGroupMember(chatUuid, callerUuid)
	if err != nil {
		return err
	}
	if chat.Kind != model.ChatKindGroup {
		return errorx.New(errorx.CodeInvalidParam, "only group chats can be left")
	}
	return s.repos.ChatMember.Delete(chatUuid, callerUuid)
}

// SetNickname sets the caller's per-chat display override. An empty
// nickname clears it back to the profile name.
func (s *Service) SetNickname(chatUuid, callerUuid, nickname string) error {
	if _, err := s.requireGroupMember(chatUuid, callerUuid); err != nil {
		return err
	}
	return s.repos.ChatMember.UpdateNickname(chatUuid, callerUuid, nickname)
}

// ListMine returns every direct and group chat on the caller's roster.
func (s *Service) ListMine(callerUuid string) ([]respond.ChatRespond, error) {
	chatUuids, err := s.repos.ChatMember.FindChatUuidsByUser(callerUuid)
	if err != nil {
		return nil, err
	}
	chats, err := s.repos.Chat.FindByUuids(chatUuids)
	if err != nil {
		return nil, err
	}
	result := make([]respond.ChatRespond, 0, len(chats))
	for _, chat := range chats {
		result = append(result, chatRespond(&chat))
	}
	return result, nil
}

// ListMembers returns the roster with nickname overrides resolved
// against profile names.
func (s *Service) ListMembers(chatUuid, callerUuid string) ([]respond.ChatMemberRespond, error) {
	if _, err := s.requireGroupMember(chatUuid, callerUuid); err != nil {
		return nil, err
	}
	members, err := s.repos.ChatMember.FindByChatUuid(chatUuid)
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

	result := make([]respond.ChatMemberRespond, 0, len(members))
	for _, m := range members {
		entry := respond.ChatMemberRespond{
			UserId:   m.UserUuid,
			Nickname: m.Nickname,
			JoinedAt: m.CreatedAt.Format(time.RFC3339),
		}
		if u, ok := byUuid[m.UserUuid]; ok {
			if entry.Nickname == "" {
				entry.Nickname = u.Nickname
			}
			entry.Avatar = u.Avatar
		}
		result = append(result, entry)
	}
	return result, nil
}

// requireGroupMember resolves the chat and gates on its own roster.
// Channels are out of scope for this service.
func (s *Service) requireGroupMember(chatUuid, callerUuid string) (*model.Chat, error) {
	chat, err := s.repos.Chat.FindByUuid(chatUuid)
	if err != nil {
		return nil, err
	}
	if chat.IsChannel() {
		return nil, errorx.New(errorx.CodeInvalidParam, "channel rosters are managed by their community")
	}
	if _, err := s.repos.ChatMember.Find(chatUuid, callerUuid); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "not a member of this chat")
		}
		return nil, err
	}
	return chat, nil
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
