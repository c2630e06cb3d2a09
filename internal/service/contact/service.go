// Package contact manages friendships: requests, acceptance, removal.
package contact

import (
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/respond"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"
)

// Service implements friendship operations.
type Service struct {
	repos *repository.Repositories
}

// NewService creates the contact service.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// Request sends a friend request to another user. If the target already
// has a pending request towards the caller the pair is accepted
// directly instead of holding two crossing requests.
func (s *Service) Request(callerUuid, targetUuid string) error {
	if targetUuid == callerUuid {
		return errorx.New(errorx.CodeInvalidParam, "cannot friend yourself")
	}
	if _, err := s.repos.User.FindByUuid(targetUuid); err != nil {
		return err
	}

	existing, err := s.repos.Contact.FindEither(callerUuid, targetUuid)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Status == model.ContactStatusAccepted {
			return errorx.New(errorx.CodeConflict, "already friends")
		}
		if existing.UserId == callerUuid {
			return errorx.New(errorx.CodeConflict, "friend request already sent")
		}
		return s.repos.Contact.UpdateStatus(existing.UserId, existing.FriendId, model.ContactStatusAccepted)
	}

	err = s.repos.Contact.Create(&model.Contact{
		UserId:   callerUuid,
		FriendId: targetUuid,
		Status:   model.ContactStatusPending,
	})
	if err != nil && errorx.GetCode(err) != errorx.CodeConflict {
		return err
	}
	return nil
}

// Accept confirms a pending request sent by requesterUuid to the caller.
func (s *Service) Accept(callerUuid, requesterUuid string) error {
	contact, err := s.repos.Contact.Find(requesterUuid, callerUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "no pending request from this user")
		}
		return err
	}
	if contact.Status == model.ContactStatusAccepted {
		return nil
	}
	return s.repos.Contact.UpdateStatus(requesterUuid, callerUuid, model.ContactStatusAccepted)
}

// Remove deletes the pair's friendship row in either direction. This
// covers rejecting an incoming request, withdrawing an outgoing one,
// and unfriending; removing a pair with no row is a no-op.
func (s *Service) Remove(callerUuid, targetUuid string) error {
	return s.repos.Contact.Delete(callerUuid, targetUuid)
}

// List returns accepted friends and the pending requests that involve
// the caller, with profiles resolved.
func (s *Service) List(callerUuid string) (*respond.FriendsRespond, error) {
	accepted, err := s.repos.Contact.FindAccepted(callerUuid)
	if err != nil {
		return nil, err
	}
	incoming, err := s.repos.Contact.FindPendingFor(callerUuid)
	if err != nil {
		return nil, err
	}

	otherOf := func(c model.Contact) string {
		if c.UserId == callerUuid {
			return c.FriendId
		}
		return c.UserId
	}
	uuids := make([]string, 0, len(accepted)+len(incoming))
	for _, c := range accepted {
		uuids = append(uuids, otherOf(c))
	}
	for _, c := range incoming {
		uuids = append(uuids, c.UserId)
	}
	users, err := s.repos.User.FindByUuids(uuids)
	if err != nil {
		return nil, err
	}
	byUuid := make(map[string]model.UserInfo, len(users))
	for _, u := range users {
		byUuid[u.Uuid] = u
	}

	entry := func(userUuid, status string, in bool) respond.FriendRespond {
		e := respond.FriendRespond{UserId: userUuid, Status: status, Incoming: in}
		if u, ok := byUuid[userUuid]; ok {
			e.Nickname = u.Nickname
			e.Avatar = u.Avatar
		}
		return e
	}

	result := &respond.FriendsRespond{
		Friends: make([]respond.FriendRespond, 0, len(accepted)),
		Pending: make([]respond.FriendRespond, 0, len(incoming)),
	}
	for _, c := range accepted {
		result.Friends = append(result.Friends, entry(otherOf(c), "accepted", false))
	}
	for _, c := range incoming {
		result.Pending = append(result.Pending, entry(c.UserId, "pending", true))
	}
	return result, nil
}
