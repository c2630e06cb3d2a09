// Package membership decides whether a user may act on a chat. It is
// the single authorization gate for every message read and write.
package membership

import (
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"
)

// Service resolves chat membership against the durable rosters.
type Service struct {
	repos *repository.Repositories
}

// NewService creates the membership service.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// VerifyMembership reports whether userUuid may act on chatUuid.
//
// A nil chat means the chat does not exist; callers must treat that as
// not-found, distinct from found-but-not-member. Channel chats resolve
// against the owning community roster, every other kind against the
// chat's own roster. Read-only, safe to call on every operation.
func (s *Service) VerifyMembership(chatUuid, userUuid string) (bool, *model.Chat, error) {
	chat, err := s.repos.Chat.FindByUuid(chatUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return false, nil, nil
		}
		return false, nil, err
	}

	if chat.IsChannel() {
		if _, err := s.repos.CommunityMember.Find(chat.CommunityId, userUuid); err != nil {
			if errorx.IsNotFound(err) {
				return false, chat, nil
			}
			return false, chat, err
		}
		return true, chat, nil
	}

	if _, err := s.repos.ChatMember.Find(chatUuid, userUuid); err != nil {
		if errorx.IsNotFound(err) {
			return false, chat, nil
		}
		return false, chat, err
	}
	return true, chat, nil
}
