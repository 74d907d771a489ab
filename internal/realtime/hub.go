package realtime

import (
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains circle_id -> set of connections for live-circle presence and
// broadcasts events. Redis pub/sub bridges broadcasts across instances.
type Hub struct {
	// circleID -> map[clientID]*Client
	circles  map[int64]map[string]*Client
	subs     map[int64]func() // cancel Redis subscription per circle
	mu       sync.RWMutex
	logger   *zap.Logger
	redisPub Publisher
	redisSub Subscriber
}

// Publisher publishes circle events for cross-instance broadcast.
type Publisher interface {
	PublishCircleEvent(circleID int64, event string, payload []byte) error
}

// Subscriber subscribes to a circle's channel and invokes handler for
// incoming events.
type Subscriber interface {
	SubscribeCircle(circleID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		circles:  make(map[int64]map[string]*Client),
		subs:     make(map[int64]func()),
		logger:   logger,
		redisPub: pub,
		redisSub: sub,
	}
}

// Register adds a client to a circle room. Starts the Redis subscription for
// this circle when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.circles[c.CircleID] == nil {
		h.circles[c.CircleID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeCircle(c.CircleID, func(event string, payload []byte) {
				h.BroadcastToCircle(c.CircleID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.CircleID] = cancel
			}
		}
	}
	h.circles[c.CircleID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined circle",
		zap.String("client_id", c.ID),
		zap.Int64("circle_id", c.CircleID),
	)
}

// Unregister removes a client from a circle room. Cancels the Redis
// subscription when the last client leaves and tells the rest who left.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var remaining int
	if m, ok := h.circles[c.CircleID]; ok {
		delete(m, c.ID)
		remaining = len(m)
		if remaining == 0 {
			delete(h.circles, c.CircleID)
			if cancel, ok := h.subs[c.CircleID]; ok {
				cancel()
				delete(h.subs, c.CircleID)
			}
		}
	}
	h.mu.Unlock()
	if remaining > 0 {
		h.BroadcastToCircleAndPublish(c.CircleID, "leave", map[string]string{
			"user_id":  strconv.FormatInt(c.UserID, 10),
			"username": c.Username,
		})
		h.BroadcastToCircleAndPublish(c.CircleID, "audience_count", map[string]int{
			"count": remaining,
		})
	}
	h.logger.Debug("client left circle",
		zap.String("client_id", c.ID),
		zap.Int64("circle_id", c.CircleID),
	)
}

// BroadcastToCircle sends a message to all clients in a circle (local only).
func (h *Hub) BroadcastToCircle(circleID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.circles[circleID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToCircleAndPublish sends to local clients and publishes to Redis
// for other instances.
func (h *Hub) BroadcastToCircleAndPublish(circleID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToCircle(circleID, event, json.RawMessage(data))
	if h.redisPub != nil {
		_ = h.redisPub.PublishCircleEvent(circleID, event, data)
	}
}

// PublishToCircleOnly publishes to Redis only, so the subscriber callback
// broadcasts once for every instance including this one. Used for
// chat_message to avoid duplicate delivery to local clients.
func (h *Hub) PublishToCircleOnly(circleID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redisPub != nil {
		_ = h.redisPub.PublishCircleEvent(circleID, event, data)
		return
	}
	h.BroadcastToCircle(circleID, event, json.RawMessage(data))
}

// AudienceCount returns the number of connected clients in a circle.
func (h *Hub) AudienceCount(circleID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.circles[circleID])
}
