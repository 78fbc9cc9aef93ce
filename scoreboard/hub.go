package scoreboard

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matchcenter/server/models"
)

const (
	MessageTypeMatchUpdate = "match_update"
	MessageTypeEventUpdate = "event_update"

	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// Message is the envelope every connected client receives. The bus carries no
// topics: filtering by match is the subscriber's job.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// MatchUpdatePayload announces a change of non-ledger match fields.
type MatchUpdatePayload struct {
	MatchID int                    `json:"matchId"`
	Updates map[string]interface{} `json:"updates"`
}

// EventUpdatePayload announces a ledger mutation: the full new event list,
// the recomputed scores and the event that was added or removed.
type EventUpdatePayload struct {
	MatchID      int                 `json:"matchId"`
	Events       []models.MatchEvent `json:"events"`
	HomeScore    int                 `json:"homeScore"`
	AwayScore    int                 `json:"awayScore"`
	Action       string              `json:"action"`
	LastEvent    *models.MatchEvent  `json:"lastEvent,omitempty"`
	RemovedEvent *models.MatchEvent  `json:"removedEvent,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	broadcastBacklog = 256
	clientBacklog    = 256
)

// Hub is the process-wide fan-out registry of live WebSocket connections.
// Delivery is at-most-once and best-effort: a slow client's backlog is
// dropped rather than blocking the bus, and a disconnected client simply
// misses messages until it reconnects and re-fetches state over REST.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	broadcast chan []byte
	clients   map[*Client]bool
	mu        sync.RWMutex
	logger    *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBacklog),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.logger.Info("websocket client registered", slog.Int("clients", len(h.clients)))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.logger.Info("websocket client unregistered", slog.Int("clients", len(h.clients)))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client cannot keep up; drop the message for it.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish marshals the message and hands it to the broadcast loop. It never
// blocks the caller: a committed mutation must not wait on, or fail because
// of, fan-out.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to marshal broadcast message",
			slog.String("type", msg.Type), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast backlog full, dropping message", slog.String("type", msg.Type))
	}
}

// Client is one connected viewer. The send channel is written only by the hub
// and closed only through Unregister.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, clientBacklog),
	}
}

// Send exposes the outgoing channel for tests and for handing the initial
// state to a freshly connected client.
func (c *Client) Send() chan []byte { return c.send }

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// ReadPump drains and discards client frames; the bus is one-directional.
// Its real job is noticing the disconnect and unregistering the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
