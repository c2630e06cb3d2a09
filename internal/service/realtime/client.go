package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"beacon_chat_server/pkg/constants"
	"beacon_chat_server/pkg/errorx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one authenticated websocket connection. A user may hold
// several at once; presence counts connections, not clients.
type Client struct {
	gateway  *Gateway
	conn     *websocket.Conn
	UserUuid string

	send chan []byte
	// rooms is guarded by the gateway mutex.
	rooms map[string]struct{}

	sendMu sync.Mutex
	closed bool
}

// Serve registers an upgraded connection and starts its pumps. The
// caller has already verified the token; an unauthenticated connection
// never reaches here.
func Serve(g *Gateway, conn *websocket.Conn, userUuid string) {
	c := &Client{
		gateway:  g,
		conn:     conn,
		UserUuid: userUuid,
		send:     make(chan []byte, constants.CHANNEL_SIZE),
		rooms:    make(map[string]struct{}),
	}
	g.register(c)
	go c.writePump()
	go c.readPump()
}

// enqueue hands a frame to the write pump without blocking the
// broadcaster. A full buffer drops the frame for this connection only.
func (c *Client) enqueue(frame []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		zap.L().Warn("ws send buffer full, dropping frame", zap.String("user", c.UserUuid))
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) sendEvent(event, chatId string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("marshal client event", zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, ChatId: chatId, Data: data})
	if err != nil {
		zap.L().Error("marshal client envelope", zap.String("event", event), zap.Error(err))
		return
	}
	c.enqueue(frame)
}

// sendError reports a failed request on this connection only, carrying
// the offending chat id for correlation. The connection stays open.
func (c *Client) sendError(message, chatId string) {
	c.sendEvent(EventError, "", errorPayload{Message: message, ChatId: chatId})
}

// clientMessage renders an error for the wire: business errors keep
// their message, everything else degrades to a generic line.
func clientMessage(err error) string {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code != errorx.CodeDBError && codeErr.Code != errorx.CodeCacheError {
		return codeErr.Msg
	}
	return "internal error"
}

// readPump consumes client events until the connection dies, however
// it dies. Unregistration always runs so presence stays accurate.
func (c *Client) readPump() {
	defer func() {
		c.gateway.unregister(c)
		c.closeSend()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read failed", zap.String("user", c.UserUuid), zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.sendError("malformed event", "")
			continue
		}
		c.dispatch(env)
	}
}

// dispatch routes one client event. Business failures come back as
// error events; only the read loop death closes the connection.
func (c *Client) dispatch(env Envelope) {
	switch env.Event {
	case clientJoinChat:
		if env.ChatId == "" {
			c.sendError("chatId is required", "")
			return
		}
		if err := c.gateway.joinRoom(c, env.ChatId); err != nil {
			c.sendError(clientMessage(err), env.ChatId)
		}
	case clientLeaveChat:
		c.gateway.leaveRoom(c, env.ChatId)
	case clientTyping:
		c.relayTyping(env.ChatId, EventUserTyping)
	case clientStopTyping:
		c.relayTyping(env.ChatId, EventUserStopTyping)
	case clientSendMessage:
		c.echoMessage(env)
	default:
		c.sendError("unknown event "+env.Event, env.ChatId)
	}
}

// relayTyping passes a typing signal to the other room members. Not
// persisted, no delivery guarantee; clients run their own stop timeout.
func (c *Client) relayTyping(chatId, event string) {
	if chatId == "" || !c.gateway.inRoom(c, chatId) {
		c.sendError("not joined to chat", chatId)
		return
	}
	data, err := json.Marshal(typingPayload{ChatId: chatId, UserId: c.UserUuid})
	if err != nil {
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, ChatId: chatId, Data: data})
	if err != nil {
		return
	}
	c.gateway.broadcastRoom(chatId, frame, c.UserUuid)
}

// echoMessage is the legacy non-persisting send path: the body is
// re-broadcast after an access check only. The HTTP send endpoint is
// the authoritative write path.
//
// Deprecated: clients should POST /messages/:chatId instead.
func (c *Client) echoMessage(env Envelope) {
	if env.ChatId == "" {
		c.sendError("chatId is required", "")
		return
	}
	isMember, chat, err := c.gateway.verifier.VerifyMembership(env.ChatId, c.UserUuid)
	if err != nil {
		c.sendError(clientMessage(err), env.ChatId)
		return
	}
	if chat == nil {
		c.sendError("chat "+env.ChatId+" not found", env.ChatId)
		return
	}
	if !isMember {
		c.sendError("not a member of chat "+env.ChatId, env.ChatId)
		return
	}
	frame, err := json.Marshal(Envelope{Event: EventNewMessage, ChatId: env.ChatId, Data: env.Data})
	if err != nil {
		return
	}
	c.gateway.broadcastRoom(env.ChatId, frame, "")
}

// writePump drains the send buffer and keeps the connection alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
