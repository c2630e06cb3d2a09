// Package message owns the message state machine and its satellite
// entities: reactions, read receipts and pins. Every operation is
// gated by the membership authority, and every broadcast happens only
// after the durable write it reports has committed.
package message

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	myredis "beacon_chat_server/internal/dao/redis"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/dto/respond"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/internal/service/membership"
	"beacon_chat_server/internal/service/realtime"
	"beacon_chat_server/pkg/constants"
	"beacon_chat_server/pkg/errorx"
	"beacon_chat_server/pkg/util/snowflake"
	"beacon_chat_server/pkg/util/textunits"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Broadcaster publishes room events. Implemented by the realtime
// gateway; satisfied by a fake in tests.
type Broadcaster interface {
	Broadcast(chatId, event string, payload any)
}

// NotifyDispatcher fans a sent message out to absent members.
type NotifyDispatcher interface {
	Dispatch(chat *model.Chat, msg *model.Message, senderUuid, senderName string)
}

// Service is the message lifecycle engine.
type Service struct {
	repos       *repository.Repositories
	membership  *membership.Service
	broadcaster Broadcaster
	dispatcher  NotifyDispatcher
	cache       myredis.AsyncCacheService
	sanitizer   *bluemonday.Policy
}

// NewService wires the engine. dispatcher and cache may be nil, which
// disables push fan-out and page caching respectively.
func NewService(
	repos *repository.Repositories,
	membershipSvc *membership.Service,
	broadcaster Broadcaster,
	dispatcher NotifyDispatcher,
	cache myredis.AsyncCacheService,
) *Service {
	return &Service{
		repos:       repos,
		membership:  membershipSvc,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
		cache:       cache,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// authorize resolves the chat and gates the caller through the
// membership authority. Not-found and forbidden stay distinct.
func (s *Service) authorize(chatUuid, userUuid string) (*model.Chat, error) {
	isMember, chat, err := s.membership.VerifyMembership(chatUuid, userUuid)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "chat %s not found", chatUuid)
	}
	if !isMember {
		return nil, errorx.Newf(errorx.CodeForbidden, "not a member of chat %s", chatUuid)
	}
	return chat, nil
}

// authorizeMessage looks up the message first, then gates through the
// owning chat, never the other way around.
func (s *Service) authorizeMessage(messageUuid int64, userUuid string) (*model.Message, *model.Chat, error) {
	msg, err := s.repos.Message.FindByUuid(messageUuid)
	if err != nil {
		return nil, nil, err
	}
	chat, err := s.authorize(msg.ChatUuid, userUuid)
	if err != nil {
		return nil, nil, err
	}
	return msg, chat, nil
}

// sanitizeText strips HTML and enforces the length ceiling. The empty
// check runs after stripping so tag-only content is rejected.
func (s *Service) sanitizeText(content string) (string, error) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(content))
	if clean == "" {
		return "", errorx.New(errorx.CodeInvalidParam, "message content is empty")
	}
	if textunits.Count(clean) > constants.MESSAGE_MAX_LEN {
		return "", errorx.Newf(errorx.CodeInvalidParam, "message content exceeds %d characters", constants.MESSAGE_MAX_LEN)
	}
	return clean, nil
}

// Send creates a message, broadcasts it to the room and queues the
// push fan-out for absent members.
func (s *Service) Send(chatUuid, senderUuid string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	chat, err := s.authorize(chatUuid, senderUuid)
	if err != nil {
		return nil, err
	}
	if !model.ValidMessageType(req.Type) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unsupported message type %s", req.Type)
	}

	content := req.Content
	if req.Type == model.MessageTypeText {
		content, err = s.sanitizeText(req.Content)
		if err != nil {
			return nil, err
		}
	}

	msg := model.Message{
		Uuid:       snowflake.GenerateID(),
		ChatUuid:   chatUuid,
		SenderUuid: sql.NullString{String: senderUuid, Valid: true},
		Type:       req.Type,
		Content:    content,
		Metadata:   req.Metadata,
	}

	if req.ReplyTo != "" {
		replyUuid, err := strconv.ParseInt(req.ReplyTo, 10, 64)
		if err != nil {
			return nil, errorx.New(errorx.CodeInvalidParam, "replyTo is not a message id")
		}
		target, err := s.repos.Message.FindByUuid(replyUuid)
		if err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.New(errorx.CodeInvalidParam, "reply target not found")
			}
			return nil, err
		}
		if target.ChatUuid != chatUuid {
			return nil, errorx.New(errorx.CodeInvalidParam, "reply target belongs to another chat")
		}
		msg.ReplyTo = sql.NullInt64{Int64: replyUuid, Valid: true}
	}

	if err := s.repos.Message.Create(&msg); err != nil {
		return nil, err
	}

	rsp, err := s.hydrateOne(&msg)
	if err != nil {
		return nil, err
	}

	// Broadcast strictly after the insert committed, then the
	// fire-and-forget fan-out, then cache invalidation.
	s.broadcaster.Broadcast(chatUuid, realtime.EventNewMessage, rsp)
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(chat, &msg, senderUuid, rsp.Sender.Nickname)
	}
	s.invalidatePageCache(chatUuid)

	return rsp, nil
}

// Edit replaces a text message's content. Author-only; a deleted
// message is terminal and rejects edits.
func (s *Service) Edit(messageUuid int64, userUuid, content string) (*respond.MessageRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}
	if !msg.SenderUuid.Valid || msg.SenderUuid.String != userUuid {
		return nil, errorx.New(errorx.CodeForbidden, "only the author can edit a message")
	}
	if msg.Deleted() {
		return nil, errorx.New(errorx.CodeInvalidParam, "cannot edit deleted message")
	}

	clean, err := s.sanitizeText(content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repos.Message.UpdateContent(messageUuid, clean, now); err != nil {
		return nil, err
	}
	msg.Content = clean
	msg.EditedAt = sql.NullTime{Time: now, Valid: true}

	rsp, err := s.hydrateOne(msg)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(msg.ChatUuid, realtime.EventMessageEdited, rsp)
	s.invalidatePageCache(msg.ChatUuid)
	return rsp, nil
}

// Delete soft-deletes a message. Author-only and idempotent: deleting
// an already-deleted message succeeds without a second broadcast.
func (s *Service) Delete(messageUuid int64, userUuid string) (*respond.MessageDeletedRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}
	if !msg.SenderUuid.Valid || msg.SenderUuid.String != userUuid {
		return nil, errorx.New(errorx.CodeForbidden, "only the author can delete a message")
	}

	if msg.Deleted() {
		return &respond.MessageDeletedRespond{
			Id:        strconv.FormatInt(messageUuid, 10),
			ChatId:    msg.ChatUuid,
			DeletedAt: msg.DeletedTime.Time.Format(time.RFC3339),
		}, nil
	}

	now := time.Now()
	if err := s.repos.Message.MarkDeleted(messageUuid, now); err != nil {
		return nil, err
	}

	rsp := &respond.MessageDeletedRespond{
		Id:        strconv.FormatInt(messageUuid, 10),
		ChatId:    msg.ChatUuid,
		DeletedAt: now.Format(time.RFC3339),
	}
	s.broadcaster.Broadcast(msg.ChatUuid, realtime.EventMessageDeleted, rsp)
	s.invalidatePageCache(msg.ChatUuid)
	return rsp, nil
}

// React adds an emoji reaction. Duplicate adds are success, and the
// full current reaction set is rebroadcast so clients never reconcile
// deltas.
func (s *Service) React(messageUuid int64, userUuid, emoji string) (*respond.ReactionUpdateRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}
	if emoji == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "emoji is required")
	}

	err = s.repos.Reaction.Create(&model.Reaction{
		MessageUuid: messageUuid,
		UserUuid:    userUuid,
		Emoji:       emoji,
	})
	if err != nil && errorx.GetCode(err) != errorx.CodeConflict {
		return nil, err
	}
	return s.broadcastReactions(msg)
}

// Unreact removes a reaction; removing a non-existent one is a no-op
// success.
func (s *Service) Unreact(messageUuid int64, userUuid, emoji string) (*respond.ReactionUpdateRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Reaction.Delete(messageUuid, userUuid, emoji); err != nil {
		return nil, err
	}
	return s.broadcastReactions(msg)
}

func (s *Service) broadcastReactions(msg *model.Message) (*respond.ReactionUpdateRespond, error) {
	reactions, err := s.repos.Reaction.FindByMessageUuid(msg.Uuid)
	if err != nil {
		return nil, err
	}
	rsp := &respond.ReactionUpdateRespond{
		MessageId: strconv.FormatInt(msg.Uuid, 10),
		ChatId:    msg.ChatUuid,
		Reactions: groupReactions(reactions),
	}
	s.broadcaster.Broadcast(msg.ChatUuid, realtime.EventReactionUpdate, rsp)
	s.invalidatePageCache(msg.ChatUuid)
	return rsp, nil
}

// MarkRead records the first observation of a message by a member.
// First read wins; repeats succeed without broadcasting again.
func (s *Service) MarkRead(messageUuid int64, userUuid string) (*respond.MessageReadRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repos.ReadReceipt.Create(&model.ReadReceipt{
		MessageUuid: messageUuid,
		UserUuid:    userUuid,
		ReadAt:      now,
	})
	if err != nil {
		if errorx.GetCode(err) != errorx.CodeConflict {
			return nil, err
		}
		existing, err := s.repos.ReadReceipt.Find(messageUuid, userUuid)
		if err != nil {
			return nil, err
		}
		return &respond.MessageReadRespond{
			MessageId: strconv.FormatInt(messageUuid, 10),
			ChatId:    msg.ChatUuid,
			UserId:    userUuid,
			ReadAt:    existing.ReadAt.Format(time.RFC3339),
		}, nil
	}

	rsp := &respond.MessageReadRespond{
		MessageId: strconv.FormatInt(messageUuid, 10),
		ChatId:    msg.ChatUuid,
		UserId:    userUuid,
		ReadAt:    now.Format(time.RFC3339),
	}
	s.broadcaster.Broadcast(msg.ChatUuid, realtime.EventMessageRead, rsp)
	return rsp, nil
}

// Pin pins a message. Any member may pin; pinning an already-pinned
// message is a no-op success without a second broadcast.
func (s *Service) Pin(messageUuid int64, userUuid string) (*respond.PinRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Pin.FindByMessageUuid(messageUuid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.pinRespond(msg, existing)
	}

	pin := model.PinnedMessage{
		MessageUuid: messageUuid,
		ChatUuid:    msg.ChatUuid,
		PinnedBy:    userUuid,
	}
	if err := s.repos.Pin.Create(&pin); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			raced, findErr := s.repos.Pin.FindByMessageUuid(messageUuid)
			if findErr != nil || raced == nil {
				return nil, err
			}
			return s.pinRespond(msg, raced)
		}
		return nil, err
	}

	rsp, err := s.pinRespond(msg, &pin)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(msg.ChatUuid, realtime.EventMessagePinned, rsp)
	return rsp, nil
}

func (s *Service) pinRespond(msg *model.Message, pin *model.PinnedMessage) (*respond.PinRespond, error) {
	hydrated, err := s.hydrateOne(msg)
	if err != nil {
		return nil, err
	}
	return &respond.PinRespond{
		Message:  *hydrated,
		PinnedBy: pin.PinnedBy,
		PinnedAt: pin.CreatedAt.Format(time.RFC3339),
	}, nil
}

// Unpin removes a pin; unpinning an unpinned message is a no-op
// success. The broadcast carries the bare (chat, message) tuple.
func (s *Service) Unpin(messageUuid int64, userUuid string) (*respond.MessageUnpinnedRespond, error) {
	msg, _, err := s.authorizeMessage(messageUuid, userUuid)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Pin.DeleteByMessageUuid(messageUuid); err != nil {
		return nil, err
	}
	rsp := &respond.MessageUnpinnedRespond{
		MessageId: strconv.FormatInt(messageUuid, 10),
		ChatId:    msg.ChatUuid,
	}
	s.broadcaster.Broadcast(msg.ChatUuid, realtime.EventMessageUnpinned, rsp)
	return rsp, nil
}

// List pages a chat's history, oldest first, through the redis page
// cache when one is wired.
func (s *Service) List(chatUuid, userUuid string, limit int, before int64) ([]respond.MessageRespond, error) {
	if _, err := s.authorize(chatUuid, userUuid); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.MESSAGE_PAGE_SIZE
	}
	if limit > constants.MESSAGE_PAGE_MAX {
		limit = constants.MESSAGE_PAGE_MAX
	}

	cacheKey := pageCacheKey(chatUuid, before, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(context.Background(), cacheKey); err == nil && cached != "" {
			var page []respond.MessageRespond
			if err := json.Unmarshal([]byte(cached), &page); err == nil {
				return page, nil
			}
		}
	}

	messages, err := s.repos.Message.Page(chatUuid, before, limit)
	if err != nil {
		return nil, err
	}
	page, err := s.hydrateMany(messages)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SubmitTask(func() {
			data, err := json.Marshal(page)
			if err != nil {
				return
			}
			if err := s.cache.Set(context.Background(), cacheKey, string(data),
				time.Minute*constants.REDIS_TIMEOUT); err != nil {
				zap.L().Warn("cache message page failed", zap.Error(err))
			}
		})
	}
	return page, nil
}

// ListPins returns the chat's pinned messages with pin metadata.
func (s *Service) ListPins(chatUuid, userUuid string) ([]respond.PinRespond, error) {
	if _, err := s.authorize(chatUuid, userUuid); err != nil {
		return nil, err
	}
	pins, err := s.repos.Pin.FindByChatUuid(chatUuid)
	if err != nil {
		return nil, err
	}
	if len(pins) == 0 {
		return []respond.PinRespond{}, nil
	}

	uuids := make([]int64, 0, len(pins))
	for _, pin := range pins {
		uuids = append(uuids, pin.MessageUuid)
	}
	messages, err := s.repos.Message.FindByUuids(uuids)
	if err != nil {
		return nil, err
	}
	hydrated, err := s.hydrateMany(messages)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]respond.MessageRespond, len(hydrated))
	for _, m := range hydrated {
		byId[m.Id] = m
	}

	result := make([]respond.PinRespond, 0, len(pins))
	for _, pin := range pins {
		m, ok := byId[strconv.FormatInt(pin.MessageUuid, 10)]
		if !ok {
			continue
		}
		result = append(result, respond.PinRespond{
			Message:  m,
			PinnedBy: pin.PinnedBy,
			PinnedAt: pin.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func pageCacheKey(chatUuid string, before int64, limit int) string {
	return "message_page_" + chatUuid + "_" + strconv.FormatInt(before, 10) + "_" + strconv.Itoa(limit)
}

func (s *Service) invalidatePageCache(chatUuid string) {
	if s.cache == nil {
		return
	}
	s.cache.SubmitTask(func() {
		if err := s.cache.DeleteByPattern(context.Background(), "message_page_"+chatUuid+"_*"); err != nil {
			zap.L().Warn("invalidate message page cache failed", zap.Error(err))
		}
	})
}
