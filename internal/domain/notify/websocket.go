package notify

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"funnelwerk/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades dashboard connections onto the lead event stream.
// The stream is read-only for the client; inbound frames are ignored
// except to detect the close.
type WSHandler struct {
	hub    *Hub
	tokens *jwt.Service
}

func NewWSHandler(hub *Hub, tokens *jwt.Service) *WSHandler {
	return &WSHandler{hub: hub, tokens: tokens}
}

// HandleWebSocket serves GET /ws/leads?token=JWT_TOKEN.
// The token travels in the query because browsers cannot set headers on
// WebSocket handshakes.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required. Use ?token=YOUR_JWT_TOKEN",
		})
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed admin_id=%d error=%q", claims.AdminID, err)
		return
	}

	connID := uuid.NewString()
	h.hub.Register(connID, conn)
	log.Printf("ws_connected admin_id=%d conn=%s", claims.AdminID, connID)

	defer func() {
		h.hub.Unregister(connID)
		log.Printf("ws_disconnected admin_id=%d conn=%s", claims.AdminID, connID)
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	go pingLoop(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Printf("ws_read_error admin_id=%d error=%q", claims.AdminID, err)
			}
			return
		}
	}
}

func pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
