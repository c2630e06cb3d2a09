package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"beacon_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Gateway owns the realtime state: per-chat rooms, the per-user
// connection sets backing presence, and the bus every lifecycle event
// flows through. All map access is guarded by mu; connection pumps and
// the bus consumer run on their own goroutines.
type Gateway struct {
	verifier *CachedVerifier
	bus      EventBus

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	conns map[string]map[*Client]struct{}
}

// NewGateway creates a gateway authorizing joins through verifier.
// AttachBus must be called before the first broadcast.
func NewGateway(verifier *CachedVerifier) *Gateway {
	return &Gateway{
		verifier: verifier,
		rooms:    make(map[string]map[*Client]struct{}),
		conns:    make(map[string]map[*Client]struct{}),
	}
}

// AttachBus wires the event transport. The bus delivers back into
// Route, so broadcast order matches publish order.
func (g *Gateway) AttachBus(bus EventBus) {
	g.bus = bus
}

// Broadcast publishes one event through the bus. An empty chatId
// addresses every open connection, otherwise the chat's room. Callers
// publish only after the write they are reporting has committed.
func (g *Gateway) Broadcast(chatId, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("marshal broadcast payload", zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, ChatId: chatId, Data: data})
	if err != nil {
		zap.L().Error("marshal broadcast envelope", zap.String("event", event), zap.Error(err))
		return
	}
	if g.bus == nil {
		g.Route(frame)
		return
	}
	if err := g.bus.Publish(context.Background(), frame); err != nil {
		zap.L().Error("publish broadcast", zap.String("event", event), zap.Error(err))
	}
}

// Route delivers one serialized envelope coming off the bus.
func (g *Gateway) Route(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		zap.L().Error("route malformed envelope", zap.Error(err))
		return
	}
	if env.ChatId == "" {
		g.broadcastAll(frame)
		return
	}
	g.broadcastRoom(env.ChatId, frame, "")
}

// register adds a connection and fires the online transition when it
// is the user's first. The snapshot of currently-online users goes to
// the new connection only.
func (g *Gateway) register(c *Client) {
	g.mu.Lock()
	set, ok := g.conns[c.UserUuid]
	if !ok {
		set = make(map[*Client]struct{})
		g.conns[c.UserUuid] = set
	}
	set[c] = struct{}{}
	first := len(set) == 1

	online := make([]string, 0, len(g.conns))
	for userUuid := range g.conns {
		online = append(online, userUuid)
	}
	g.mu.Unlock()

	c.sendEvent(EventPresenceSnapshot, "", online)
	if first {
		g.Broadcast("", EventPresenceUpdate, presencePayload{UserId: c.UserUuid, Status: "online"})
	}
	zap.L().Info("ws client registered", zap.String("user", c.UserUuid), zap.Bool("first", first))
}

// unregister removes a connection from every room and from the
// presence set, firing the offline transition when it was the user's
// last. Runs on every disconnect path, clean or not.
func (g *Gateway) unregister(c *Client) {
	g.mu.Lock()
	for chatId := range c.rooms {
		if room, ok := g.rooms[chatId]; ok {
			delete(room, c)
			if len(room) == 0 {
				delete(g.rooms, chatId)
			}
		}
	}
	c.rooms = make(map[string]struct{})

	last := false
	if set, ok := g.conns[c.UserUuid]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(g.conns, c.UserUuid)
			last = true
		}
	}
	g.mu.Unlock()

	if last {
		g.Broadcast("", EventPresenceUpdate, presencePayload{UserId: c.UserUuid, Status: "offline"})
	}
	zap.L().Info("ws client unregistered", zap.String("user", c.UserUuid), zap.Bool("last", last))
}

// joinRoom re-validates membership before subscribing the connection.
// The verdict may be up to the cache TTL stale.
func (g *Gateway) joinRoom(c *Client, chatId string) error {
	isMember, chat, err := g.verifier.VerifyMembership(chatId, c.UserUuid)
	if err != nil {
		return err
	}
	if chat == nil {
		return errorx.Newf(errorx.CodeNotFound, "chat %s not found", chatId)
	}
	if !isMember {
		return errorx.Newf(errorx.CodeForbidden, "not a member of chat %s", chatId)
	}

	g.mu.Lock()
	room, ok := g.rooms[chatId]
	if !ok {
		room = make(map[*Client]struct{})
		g.rooms[chatId] = room
	}
	room[c] = struct{}{}
	c.rooms[chatId] = struct{}{}
	g.mu.Unlock()
	return nil
}

// leaveRoom is unconditional: leaving needs no re-authorization.
func (g *Gateway) leaveRoom(c *Client, chatId string) {
	g.mu.Lock()
	if room, ok := g.rooms[chatId]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(g.rooms, chatId)
		}
	}
	delete(c.rooms, chatId)
	g.mu.Unlock()
}

// inRoom reports whether the connection currently subscribes the chat.
func (g *Gateway) inRoom(c *Client, chatId string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := c.rooms[chatId]
	return ok
}

func (g *Gateway) broadcastRoom(chatId string, frame []byte, exceptUser string) {
	g.mu.RLock()
	room := g.rooms[chatId]
	targets := make([]*Client, 0, len(room))
	for c := range room {
		if exceptUser != "" && c.UserUuid == exceptUser {
			continue
		}
		targets = append(targets, c)
	}
	g.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(frame)
	}
}

func (g *Gateway) broadcastAll(frame []byte) {
	g.mu.RLock()
	targets := make([]*Client, 0, len(g.conns))
	for _, set := range g.conns {
		for c := range set {
			targets = append(targets, c)
		}
	}
	g.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(frame)
	}
}

// ConnectedUserIds returns the distinct users currently subscribed to
// the chat's room. The notification dispatcher subtracts these from
// the push recipients.
func (g *Gateway) ConnectedUserIds(chatId string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for c := range g.rooms[chatId] {
		if _, ok := seen[c.UserUuid]; ok {
			continue
		}
		seen[c.UserUuid] = struct{}{}
		ids = append(ids, c.UserUuid)
	}
	return ids
}

// OnlineUserIds returns every user with at least one open connection.
func (g *Gateway) OnlineUserIds() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.conns))
	for userUuid := range g.conns {
		ids = append(ids, userUuid)
	}
	return ids
}
