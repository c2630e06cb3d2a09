package message

import (
	"strconv"
	"time"

	"beacon_chat_server/internal/dto/respond"
	"beacon_chat_server/internal/model"
)

// anonymousSender renders messages whose author account was removed.
var anonymousSender = respond.SenderInfo{Nickname: "Anonymous"}

// hydrateOne builds the full wire shape for a single message.
func (s *Service) hydrateOne(msg *model.Message) (*respond.MessageRespond, error) {
	page, err := s.hydrateMany([]model.Message{*msg})
	if err != nil {
		return nil, err
	}
	return &page[0], nil
}

// hydrateMany resolves senders, reply snippets and reaction groups in
// batches, one query per concern regardless of page size.
func (s *Service) hydrateMany(messages []model.Message) ([]respond.MessageRespond, error) {
	if len(messages) == 0 {
		return []respond.MessageRespond{}, nil
	}

	senderIds := make([]string, 0, len(messages))
	replyIds := make([]int64, 0)
	messageIds := make([]int64, 0, len(messages))
	for _, msg := range messages {
		messageIds = append(messageIds, msg.Uuid)
		if msg.SenderUuid.Valid {
			senderIds = append(senderIds, msg.SenderUuid.String)
		}
		if msg.ReplyTo.Valid {
			replyIds = append(replyIds, msg.ReplyTo.Int64)
		}
	}

	replies := make(map[int64]model.Message)
	if len(replyIds) > 0 {
		replyMessages, err := s.repos.Message.FindByUuids(replyIds)
		if err != nil {
			return nil, err
		}
		for _, rm := range replyMessages {
			replies[rm.Uuid] = rm
			if rm.SenderUuid.Valid {
				senderIds = append(senderIds, rm.SenderUuid.String)
			}
		}
	}

	users := make(map[string]model.UserInfo)
	if len(senderIds) > 0 {
		userRows, err := s.repos.User.FindByUuids(senderIds)
		if err != nil {
			return nil, err
		}
		for _, u := range userRows {
			users[u.Uuid] = u
		}
	}

	reactionsByMessage := make(map[int64][]model.Reaction)
	reactionRows, err := s.repos.Reaction.FindByMessageUuids(messageIds)
	if err != nil {
		return nil, err
	}
	for _, r := range reactionRows {
		reactionsByMessage[r.MessageUuid] = append(reactionsByMessage[r.MessageUuid], r)
	}

	page := make([]respond.MessageRespond, 0, len(messages))
	for _, msg := range messages {
		page = append(page, buildRespond(msg, users, replies, reactionsByMessage[msg.Uuid]))
	}
	return page, nil
}

func buildRespond(
	msg model.Message,
	users map[string]model.UserInfo,
	replies map[int64]model.Message,
	reactions []model.Reaction,
) respond.MessageRespond {
	rsp := respond.MessageRespond{
		Id:        strconv.FormatInt(msg.Uuid, 10),
		ChatId:    msg.ChatUuid,
		Sender:    resolveSender(msg.SenderUuid.Valid, msg.SenderUuid.String, users),
		Type:      msg.Type,
		Content:   msg.Content,
		Metadata:  msg.Metadata,
		Reactions: groupReactions(reactions),
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	if msg.EditedAt.Valid {
		rsp.EditedAt = msg.EditedAt.Time.Format(time.RFC3339)
	}
	if msg.Deleted() {
		// The deletion event never carries content; history renders the
		// same way. Reply snippets pointing here keep the original text.
		rsp.DeletedAt = msg.DeletedTime.Time.Format(time.RFC3339)
		rsp.Content = ""
		rsp.Metadata = ""
	}
	if msg.ReplyTo.Valid {
		if target, ok := replies[msg.ReplyTo.Int64]; ok {
			rsp.ReplyTo = buildReplySnippet(target, users)
		}
	}
	return rsp
}

// buildReplySnippet previews the replied-to message with its original
// content, flagged when that message was deleted afterwards.
func buildReplySnippet(target model.Message, users map[string]model.UserInfo) *respond.ReplySnippet {
	sender := resolveSender(target.SenderUuid.Valid, target.SenderUuid.String, users)
	return &respond.ReplySnippet{
		Id:         strconv.FormatInt(target.Uuid, 10),
		SenderName: sender.Nickname,
		Content:    target.Content,
		Type:       target.Type,
		Deleted:    target.Deleted(),
	}
}

func resolveSender(valid bool, uuid string, users map[string]model.UserInfo) respond.SenderInfo {
	if !valid {
		return anonymousSender
	}
	user, ok := users[uuid]
	if !ok {
		return anonymousSender
	}
	return respond.SenderInfo{Id: user.Uuid, Nickname: user.Nickname, Avatar: user.Avatar}
}

// groupReactions folds reaction rows into per-emoji groups, first
// appearance order preserved.
func groupReactions(reactions []model.Reaction) []respond.ReactionGroup {
	groups := make([]respond.ReactionGroup, 0)
	index := make(map[string]int)
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, respond.ReactionGroup{Emoji: r.Emoji, Users: []string{}})
		}
		groups[i].Count++
		groups[i].Users = append(groups[i].Users, r.UserUuid)
	}
	return groups
}
