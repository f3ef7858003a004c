package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/calvinwijaya/blackjack-web/internal/logging"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	hub       *Hub
}

// Hub keeps the WebSocket clients of every session and pushes view updates
// to them. A browser session may have several tabs open.
type Hub struct {
	clients    map[*Client]bool
	sessions   map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *zerolog.Logger
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub. allowedOrigin is the only origin
// allowed to connect; empty allows any origin.
func NewHub(allowedOrigin string, logger *zerolog.Logger) *Hub {
	if logger == nil {
		logger = logging.GetZeroLogger("api::hub", nil)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Run starts the hub and returns once ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, exists := h.sessions[client.sessionID]; !exists {
				h.sessions[client.sessionID] = make(map[*Client]bool)
			}
			h.sessions[client.sessionID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.remove(client)
			}
			h.mu.Unlock()
		}
	}
}

// remove drops a client; h.mu must be held
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)

	if h.sessions[client.sessionID] != nil {
		delete(h.sessions[client.sessionID], client)
		if len(h.sessions[client.sessionID]) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
}

// BroadcastView sends the view of a session to all of its clients
func (h *Hub) BroadcastView(sessionID string, view game.View) {
	h.SendToSession(sessionID, Message{
		Type:      "gameUpdate",
		SessionID: sessionID,
		Data:      view,
	})
}

// SendToSession sends a message to every client of a session
func (h *Hub) SendToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error marshaling message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.sessions[sessionID] {
		select {
		case client.send <- data:
		default:
			// Client is not keeping up, it will miss this update
			h.logger.Warn().Str(logging.SessionIDKey, sessionID).Msg("Dropping view update for slow client")
		}
	}
}

// ClientCount returns the number of clients connected for a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// serveWs upgrades the connection and registers it for the session
func (h *Hub) serveWs(w http.ResponseWriter, r *http.Request, sessionID string, view game.View) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		hub:       h,
	}

	// Queue the welcome message before the client is visible to broadcasts
	welcome, _ := json.Marshal(Message{
		Type:      "welcome",
		SessionID: sessionID,
		Data:      view,
	})
	client.send <- welcome

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

// readPump reads from the connection until it closes. Clients do not send
// game actions over the socket; reading keeps the pong deadline alive.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Info().Err(err).Str(logging.SessionIDKey, c.sessionID).Msg("WebSocket closed")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
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
				// The hub closed the channel
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
