package service

import (
	"context"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	eventChannel   = "docdot_events"
)

// Event types pushed to connected clients.
const (
	EventBadgeUnlocked   = "BADGE_UNLOCKED"
	EventTimerUpdate     = "TIMER_UPDATE"
	EventLectureProgress = "LECTURE_PROGRESS"
)

// EventPublisher is implemented by EventHub. Services treat a nil publisher as
// push disabled.
type EventPublisher interface {
	PublishUser(userID string, ev Event)
}

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. A user may hold several at once.
type Client struct {
	Hub     *EventHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  string
	Limiter *rate.Limiter
}

// readPump only drains control frames and keeps the read deadline alive; clients
// have nothing to send besides pings.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err), zap.String("user_id", c.UserID))
			}
			return
		}
		if !c.Limiter.Allow() {
			logger.Log.Debug("Dropping client message over rate limit", zap.String("user_id", c.UserID))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

type pubSubMessage struct {
	TargetUsers []string        `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHub pushes server events to the user's open connections. With redis the
// events fan out through pub/sub so every instance delivers to its own clients.
type EventHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	Redis      *redis.Client

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewEventHub(rdb *redis.Client) *EventHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &EventHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[string]map[*Client]struct{})}
	}
	return h
}

func (h *EventHub) getShard(userID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(userID))
	return h.shards[f.Sum32()%shardCount]
}

// Run serves registrations until Stop is called.
func (h *EventHub) Run() {
	defer close(h.done)

	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, eventChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var ps pubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &ps); err != nil {
					logger.Log.Error("PubSub unmarshal error", zap.Error(err))
					continue
				}
				h.deliver(ps.TargetUsers, ps.Payload)
			}
		}()
	}

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if s.clients[client.UserID] == nil {
				s.clients[client.UserID] = make(map[*Client]struct{})
			}
			s.clients[client.UserID][client] = struct{}{}
			s.mu.Unlock()
			monitoring.EventConnections.Inc()
		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if conns, ok := s.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					monitoring.EventConnections.Dec()
				}
				if len(conns) == 0 {
					delete(s.clients, client.UserID)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop closes every connection and waits for Run to return.
func (h *EventHub) Stop() {
	h.cancel()
	<-h.done
}

func (h *EventHub) closeAll() {
	closed := 0
	for _, s := range h.shards {
		s.mu.Lock()
		for userID, conns := range s.clients {
			for c := range conns {
				close(c.Send)
				closed++
			}
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}
	monitoring.EventConnections.Set(0)
	logger.Log.Info("Event hub stopped", zap.Int("closed_connections", closed))
}

// Publish sends ev to the given users. It never blocks; slow clients miss events
// and catch up through the REST endpoints.
func (h *EventHub) Publish(userIDs []string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	monitoring.EventsPushed.WithLabelValues(ev.Type).Inc()

	if h.Redis == nil {
		h.deliver(userIDs, payload)
		return
	}
	msg, _ := json.Marshal(pubSubMessage{TargetUsers: userIDs, Payload: payload})
	if err := h.Redis.Publish(h.ctx, eventChannel, msg).Err(); err != nil {
		logger.Log.Warn("Event publish failed, delivering locally", zap.Error(err))
		h.deliver(userIDs, payload)
	}
}

// PublishUser is Publish for a single user.
func (h *EventHub) PublishUser(userID string, ev Event) {
	h.Publish([]string{userID}, ev)
}

func (h *EventHub) deliver(userIDs []string, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		for c := range s.clients[id] {
			select {
			case c.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

// Connected reports whether this instance holds a connection for the user.
func (h *EventHub) Connected(userID string) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID]) > 0
}

func ServeEvents(hub *EventHub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err), zap.String("user_id", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
