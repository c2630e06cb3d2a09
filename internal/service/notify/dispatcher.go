// Package notify decides who gets a push for a just-sent message and
// hands the payload to the delivery boundary. It never blocks or fails
// the send path: dispatch runs on background workers and its errors
// are logged only.
package notify

import (
	"strconv"

	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/constants"
	"beacon_chat_server/pkg/util/textunits"

	"go.uber.org/zap"
)

// Presence exposes who is currently subscribed to a chat's room.
// Implemented by the realtime gateway.
type Presence interface {
	ConnectedUserIds(chatId string) []string
}

// Deliverer is the external push boundary. It returns the tokens the
// provider reported as no longer registered so they can be pruned.
type Deliverer interface {
	Deliver(tokens []string, title, body string, data map[string]string) (unregistered []string, err error)
}

// Dispatcher computes push recipients and fans out through a Deliverer.
type Dispatcher struct {
	repos     *repository.Repositories
	presence  Presence
	deliverer Deliverer
	tasks     chan func()
}

// NewDispatcher starts the background workers draining the task queue.
func NewDispatcher(repos *repository.Repositories, presence Presence, deliverer Deliverer) *Dispatcher {
	d := &Dispatcher{
		repos:     repos,
		presence:  presence,
		deliverer: deliverer,
		tasks:     make(chan func(), constants.CHANNEL_SIZE),
	}
	for i := 0; i < 4; i++ {
		go d.startWorker()
	}
	return d
}

func (d *Dispatcher) startWorker() {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("notify worker panic", zap.Any("recover", rec))
			go d.startWorker()
		}
	}()
	for task := range d.tasks {
		task()
	}
}

// Dispatch queues the fan-out for one sent message. Fire-and-forget:
// a full queue drops the dispatch with a log line rather than stalling
// the send response.
func (d *Dispatcher) Dispatch(chat *model.Chat, msg *model.Message, senderUuid, senderName string) {
	task := func() { d.dispatch(chat, msg, senderUuid, senderName) }
	select {
	case d.tasks <- task:
	default:
		zap.L().Warn("notify queue full, dropping dispatch",
			zap.String("chat", chat.Uuid), zap.Int64("message", msg.Uuid))
	}
}

func (d *Dispatcher) dispatch(chat *model.Chat, msg *model.Message, senderUuid, senderName string) {
	recipients, err := d.recipients(chat, senderUuid)
	if err != nil {
		zap.L().Error("notify recipient lookup failed", zap.String("chat", chat.Uuid), zap.Error(err))
		return
	}
	if len(recipients) == 0 {
		return
	}

	tokens, err := d.repos.DeviceToken.FindByUserUuids(recipients)
	if err != nil {
		zap.L().Error("notify token lookup failed", zap.String("chat", chat.Uuid), zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenValues := make([]string, 0, len(tokens))
	for _, dt := range tokens {
		tokenValues = append(tokenValues, dt.Token)
	}

	data := map[string]string{
		"chatId":    chat.Uuid,
		"messageId": strconv.FormatInt(msg.Uuid, 10),
	}
	unregistered, err := d.deliverer.Deliver(tokenValues, title(chat, senderName), body(msg), data)
	if err != nil {
		zap.L().Error("push delivery failed", zap.String("chat", chat.Uuid), zap.Error(err))
	}
	for _, token := range unregistered {
		if err := d.repos.DeviceToken.DeleteByToken(token); err != nil {
			zap.L().Error("prune unregistered token failed", zap.Error(err))
		}
	}
}

// recipients is members(chat) minus the sender minus everyone already
// connected to the chat's room.
func (d *Dispatcher) recipients(chat *model.Chat, senderUuid string) ([]string, error) {
	var memberIds []string
	var err error
	if chat.IsChannel() {
		memberIds, err = d.repos.CommunityMember.MemberIds(chat.CommunityId)
	} else {
		memberIds, err = d.repos.ChatMember.MemberIds(chat.Uuid)
	}
	if err != nil {
		return nil, err
	}

	excluded := map[string]struct{}{senderUuid: {}}
	for _, id := range d.presence.ConnectedUserIds(chat.Uuid) {
		excluded[id] = struct{}{}
	}

	recipients := make([]string, 0, len(memberIds))
	for _, id := range memberIds {
		if _, skip := excluded[id]; skip {
			continue
		}
		recipients = append(recipients, id)
	}
	return recipients, nil
}

// title is the sender's display name, with the chat name appended for
// channels and named groups.
func title(chat *model.Chat, senderName string) string {
	if chat.IsChannel() || (chat.Kind == model.ChatKindGroup && chat.Name != "") {
		return senderName + " in " + chat.Name
	}
	return senderName
}

// body previews text content, truncated; non-text types get a generic
// line instead of leaking metadata.
func body(msg *model.Message) string {
	if msg.Type != model.MessageTypeText {
		return "Sent a " + msg.Type
	}
	return textunits.Truncate(msg.Content, constants.PUSH_PREVIEW_LEN)
}
