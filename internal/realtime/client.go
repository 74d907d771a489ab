package realtime

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in a circle room.
type Client struct {
	ID       string
	CircleID int64
	UserID   int64
	Username string
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
	logger   *zap.Logger
}

// TokenValidator verifies a JWT from the query string and returns the actor.
type TokenValidator func(token string) (userID int64, username string, err error)

// ServeWs handles the WebSocket upgrade and runs the client loop. The token
// travels in the query string because browsers cannot set headers on
// WebSocket connects.
func ServeWs(hub *Hub, logger *zap.Logger, validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		circleIDStr := c.Query("circle_id")
		token := c.Query("token")
		if circleIDStr == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "circle_id and token required"})
			return
		}
		circleID, err := strconv.ParseInt(circleIDStr, 10, 64)
		if err != nil || circleID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid circle_id"})
			return
		}
		userID, username, err := validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:       uuid.New().String(),
			CircleID: circleID,
			UserID:   userID,
			Username: username,
			hub:      hub,
			conn:     conn,
			send:     make(chan WSMessage, 256),
			logger:   logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "join":
			c.hub.BroadcastToCircleAndPublish(c.CircleID, "audience_count", map[string]int{
				"count": c.hub.AudienceCount(c.CircleID),
			})
			c.hub.BroadcastToCircleAndPublish(c.CircleID, "join", map[string]string{
				"user_id":  strconv.FormatInt(c.UserID, 10),
				"username": c.Username,
			})
		case "chat_message":
			// Publish only: the Redis subscriber broadcasts once per instance.
			c.hub.PublishToCircleOnly(c.CircleID, msg.Event, json.RawMessage(msg.Data))
		default:
			// ignore
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
