package handler

import (
	"net/http"
	"strings"

	"beacon_chat_server/internal/service/realtime"
	"beacon_chat_server/pkg/errorx"
	"beacon_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced at the cors middleware; the
	// handshake itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler upgrades an authenticated connection into the gateway.
type WsHandler struct {
	gateway *realtime.Gateway
}

// NewWsHandler creates the websocket handler.
func NewWsHandler(gateway *realtime.Gateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect authenticates and upgrades.
// GET /ws?token=xxx (or Authorization: Bearer xxx)
// Auth failures are refused before the upgrade; after it, business
// errors travel as error events and never close the socket.
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "authentication required",
		})
		return
	}

	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "token expired or invalid",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed",
			zap.String("user", claims.UserID),
			zap.Error(err),
		)
		return
	}
	realtime.Serve(h.gateway, conn, claims.UserID)
}
