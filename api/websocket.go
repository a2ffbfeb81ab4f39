package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phuslu/log"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// WebSocket event types pushed by the server.
const (
	EventStatementsUpdated = "statements_updated"
	EventAnalysisComplete  = "analysis_complete"
	EventSubscribed        = "subscribed"
	EventPong              = "pong"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware and the token guard the route
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// WSMessage is a message sent over WebSocket connections. Messages with a
// Ticker only reach clients subscribed to it, or clients with no
// subscription.
type WSMessage struct {
	Type   string `json:"type"`
	Ticker string `json:"ticker,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// wsIncoming is a client request: {"type":"subscribe","tickers":["TCS"]}.
type wsIncoming struct {
	Type    string   `json:"type"`
	Tickers []string `json:"tickers,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	direct     chan directMessage
	done       chan struct{}
}

type directMessage struct {
	client *WSClient
	msg    WSMessage
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage

	mu      sync.Mutex
	tickers []string // empty means every ticker
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		direct:     make(chan directMessage, 64),
		done:       make(chan struct{}),
	}
}

// Run starts the hub event loop. It closes every client when ctx is done.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			close(h.done)
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case d := <-h.direct:
			h.mu.Lock()
			if h.clients[d.client] {
				select {
				case d.client.send <- d.msg:
				default:
				}
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(msg) {
					continue
				}
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("type", msg.Type).Msg("websocket broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub. A client registered after the hub
// stopped has its send channel closed at once.
func (h *WSHub) Register(client *WSClient) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// reply sends msg to one client if it is still connected.
func (h *WSHub) reply(client *WSClient, msg WSMessage) {
	select {
	case h.direct <- directMessage{client: client, msg: msg}:
	case <-h.done:
	}
}

func (c *WSClient) subscribe(tickers []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickers = c.tickers[:0]
	for _, t := range tickers {
		if t = utils.NormalizeTicker(t); t != "" && !slices.Contains(c.tickers, t) {
			c.tickers = append(c.tickers, t)
		}
	}
	return slices.Clone(c.tickers)
}

func (c *WSClient) wants(msg WSMessage) bool {
	if msg.Ticker == "" {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers) == 0 || slices.Contains(c.tickers, msg.Ticker)
}

// handleWebSocket upgrades HTTP connections to WebSocket and streams
// document and analysis events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &WSClient{
		hub:  s.wsHub,
		send: make(chan WSMessage, 256),
	}

	s.wsHub.Register(client)

	go wsWritePump(conn, client)
	go wsReadPump(conn, client)
}

// wsReadPump reads client requests until the connection closes.
func wsReadPump(conn *websocket.Conn, client *WSClient) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		var msg wsIncoming
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		var reply WSMessage
		switch msg.Type {
		case "subscribe":
			reply = WSMessage{Type: EventSubscribed, Data: map[string]any{"tickers": client.subscribe(msg.Tickers)}}
		case "ping":
			reply = WSMessage{Type: EventPong}
		default:
			continue
		}
		client.hub.reply(client, reply)
	}
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
