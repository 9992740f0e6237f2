// File: internal/infra/ws/handler.go
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// TokenVerifier resolves a bearer token to a user id. Browsers cannot set
// headers on websocket upgrades, so the token rides in the query string.
type TokenVerifier func(token string) (userID string, err error)

type clientMessage struct {
	Type  string `json:"type"`
	JobID string `json:"job_id"`
}

// Handler upgrades HTTP requests to progress-channel websockets and runs the
// per-connection read loop.
type Handler struct {
	hub      *Hub
	verify   TokenVerifier
	upgrader websocket.Upgrader
	log      *zerolog.Logger
}

func NewHandler(hub *Hub, verify TokenVerifier, log *zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		verify: verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens via the signed token, not the Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	// all writes, hub fan-out and read-loop replies alike, go through the
	// serialized wrapper
	wc := newSafeConn(conn)
	h.hub.Register(userID, wc)
	defer func() {
		h.hub.Unregister(userID, wc)
		_ = wc.Close()
	}()

	_ = wc.WriteJSON(Envelope{
		Type:      "connection",
		Message:   "connected",
		Data:      map[string]any{"user_id": userID},
		Timestamp: time.Now(),
	})

	h.readLoop(userID, conn, wc)
}

func (h *Handler) readLoop(userID string, conn *websocket.Conn, out Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = out.WriteJSON(Envelope{
				Type:      "error",
				Message:   "Invalid JSON",
				Timestamp: time.Now(),
			})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = out.WriteJSON(Envelope{Type: "pong", Timestamp: time.Now()})
		case "subscribe":
			_ = out.WriteJSON(Envelope{Type: "subscribed", JobID: msg.JobID, Timestamp: time.Now()})
		case "unsubscribe":
			_ = out.WriteJSON(Envelope{Type: "unsubscribed", JobID: msg.JobID, Timestamp: time.Now()})
		default:
			h.log.Debug().Str("user_id", userID).Str("type", msg.Type).Msg("ignoring unknown ws message")
		}
	}
}

// StatsHandler exposes live hub counters as JSON.
func (h *Handler) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	users, conns := h.hub.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"users":       users,
		"connections": conns,
	})
}
