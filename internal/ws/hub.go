package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/models"
)

// writeWait bounds how long one recipient may stall a write. A peer that
// stops reading errors out instead of blocking fanout to everyone else.
const writeWait = 5 * time.Second

// RiderRoom names the logical delivery channel for a rider identity.
func RiderRoom(id string) string { return "rider_" + id }

// CaptainRoom names the logical delivery channel for a captain identity.
func CaptainRoom(id string) string { return "captain_" + id }

// Session is one live websocket connection. Writes are serialized with a
// mutex because gorilla connections allow only one concurrent writer.
type Session struct {
	ID   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *Session) send(event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(event)
}

// Hub is the in-process registry of live connections, addressed by per-
// identity rooms. A connection is re-bound to its identity's room every time
// it joins, so reconnects replace stale bindings naturally.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]string // session -> current room
}

// NewHub creates an empty connection registry.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]string),
	}
}

// Bind joins a session to a room, leaving any room it was in before.
func (h *Hub) Bind(room string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.sessions[s]; ok && prev != "" {
		delete(h.rooms[prev], s)
		if len(h.rooms[prev]) == 0 {
			delete(h.rooms, prev)
		}
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Session]struct{})
	}
	h.rooms[room][s] = struct{}{}
	h.sessions[s] = room
}

// Remove drops a session from the registry.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.sessions[s]; ok && room != "" {
		delete(h.rooms[room], s)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.sessions, s)
}

// Emit delivers an event to every session in a room, fire-and-forget. A
// failed write is logged and never blocks delivery to the other sessions.
func (h *Hub) Emit(room string, event models.Event) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.send(event); err != nil {
			log.WithFields(log.Fields{
				"room":   room,
				"event":  event.Event,
				"socket": s.ID,
			}).WithError(err).Warn("Failed to deliver event")
		}
	}
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
