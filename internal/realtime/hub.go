package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Live feed events.
const (
	EventFeedbackSubmitted      = "feedback_submitted"
	EventEventFeedbackSubmitted = "event_feedback_submitted"
)

// Publisher sends a live feed event to every connected organizer.
type Publisher interface {
	Publish(event string, payload interface{})
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishFeedEvent(event string, payload []byte) error
}

// RedisSubscriber subscribes to the feed channel and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeFeed(handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub tracks connected organizer clients and fans feed events out to them.
// With Redis configured, events go through the feed channel so every instance delivers them once.
type Hub struct {
	clients   map[string]*Client
	subCancel func()
	mu        sync.RWMutex
	logger    *zap.Logger
	redis     RedisPublisher
	redisSub  RedisSubscriber
}

// NewHub creates a new WebSocket hub. Both Redis arguments may be nil for a single instance.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client. The Redis subscription starts with the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if len(h.clients) == 0 && h.redisSub != nil {
		cancel, err := h.redisSub.SubscribeFeed(func(event string, payload []byte) {
			h.Broadcast(event, json.RawMessage(payload))
		})
		if err != nil {
			h.logger.Warn("feed subscribe failed", zap.Error(err))
		} else {
			h.subCancel = cancel
		}
	}
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("organizer connected", zap.String("client_id", c.ID))
}

// Unregister removes a client. The Redis subscription stops with the last client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.send)
	}
	if len(h.clients) == 0 && h.subCancel != nil {
		h.subCancel()
		h.subCancel = nil
	}
	h.mu.Unlock()
	h.logger.Debug("organizer disconnected", zap.String("client_id", c.ID))
}

// Broadcast sends a message to all local clients.
func (h *Hub) Broadcast(event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal feed event", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish implements Publisher. With Redis it publishes only, and the subscription
// callback performs the local broadcast; otherwise it broadcasts locally.
func (h *Hub) Publish(event string, payload interface{}) {
	if h.redis == nil {
		h.Broadcast(event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal feed event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := h.redis.PublishFeedEvent(event, data); err != nil {
		h.logger.Warn("publish feed event", zap.String("event", event), zap.Error(err))
		h.Broadcast(event, json.RawMessage(data))
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
