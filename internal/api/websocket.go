package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"nhooyr.io/websocket"

	"github.com/juanjparedez/mundobl/internal/auth"
)

// ──────────────────── WebSocket Hub ────────────────────

type WSHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]bool
	logger  *slog.Logger
}

type WSClient struct {
	conn    *websocket.Conn
	subject string
	send    chan []byte
}

type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func NewWSHub(logger *slog.Logger) *WSHub {
	return &WSHub{
		clients: make(map[*WSClient]bool),
		logger:  logger,
	}
}

// Broadcast never blocks: a client whose buffer is full misses the event.
func (h *WSHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(WSMessage{Event: event, Data: data})
	if err != nil {
		h.logger.Warn("websocket: marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

func (h *WSHub) addClient(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *WSHub) removeClient(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ──────────────────── WebSocket Handler ────────────────────

func (s *Server) acceptOptions() *websocket.AcceptOptions {
	var patterns []string
	for _, origin := range s.config.CORSOrigins {
		if origin == "*" {
			return &websocket.AcceptOptions{InsecureSkipVerify: true}
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: patterns}
}

// handleWebSocket runs behind auth.Require, so the caller is already known.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	conn, err := websocket.Accept(w, r, s.acceptOptions())
	if err != nil {
		s.logger.Warn("websocket accept", "error", err)
		return
	}

	client := &WSClient{
		conn:    conn,
		subject: user.Subject,
		send:    make(chan []byte, 64),
	}
	s.wsHub.addClient(client)
	s.logger.Debug("websocket client connected", "subject", client.subject)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "")
		for msg := range client.send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	// Clients never send anything meaningful; reading keeps control frames flowing.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	s.wsHub.removeClient(client)
	s.logger.Debug("websocket client disconnected", "subject", client.subject)
}
