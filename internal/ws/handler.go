package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/db"
	"github.com/ukydev/ride-dispatch/internal/models"
	"github.com/ukydev/ride-dispatch/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

// Handler upgrades websocket connections and tracks presence: join messages
// bind the connection to the caller's identity room and persist the socket
// binding, location messages overwrite a captain's live position. Every
// update is a blind last-write-wins overwrite.
type Handler struct {
	Hub      *Hub
	Captains db.CaptainCollection
	Riders   db.RiderCollection
}

// NewHandler creates a websocket presence handler.
func NewHandler(hub *Hub, captains db.CaptainCollection, riders db.RiderCollection) *Handler {
	return &Handler{Hub: hub, Captains: captains, Riders: riders}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	session := &Session{ID: newSocketID(), conn: conn}
	observability.WSConnections.Inc()
	log.WithField("socket", session.ID).Info("Websocket connected")

	defer func() {
		h.Hub.Remove(session)
		observability.WSConnections.Dec()
		if err := h.Captains.ClearSocket(context.Background(), session.ID); err != nil {
			log.WithError(err).Warn("Failed to clear socket binding")
		}
		conn.Close()
		log.WithField("socket", session.ID).Info("Websocket disconnected")
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event models.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.WithField("socket", session.ID).Warn("Dropping malformed message")
			continue
		}

		switch event.Event {
		case models.EventJoin:
			h.handleJoin(r.Context(), session, event.Data)
		case models.EventUpdateLocation:
			h.handleLocation(r.Context(), session, event.Data)
		default:
			log.WithFields(log.Fields{
				"socket": session.ID,
				"event":  event.Event,
			}).Warn("Dropping unknown event")
		}
	}
}

func (h *Handler) handleJoin(ctx context.Context, s *Session, data json.RawMessage) {
	var payload models.JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == "" {
		log.WithField("socket", s.ID).Warn("Dropping malformed join")
		return
	}
	if !models.IsValidRole(payload.Role) {
		log.WithFields(log.Fields{
			"socket": s.ID,
			"role":   payload.Role,
		}).Warn("Dropping join with unknown role")
		return
	}

	switch payload.Role {
	case models.RoleCaptain:
		h.Hub.Bind(CaptainRoom(payload.UserID), s)
		if err := h.Captains.UpdatePresence(ctx, payload.UserID, s.ID, nil); err != nil {
			log.WithError(err).WithField("captain", payload.UserID).Warn("Failed to bind captain socket")
		}
	case models.RoleRider:
		h.Hub.Bind(RiderRoom(payload.UserID), s)
		if err := h.Riders.UpdateRiderSocket(ctx, payload.UserID, s.ID); err != nil {
			log.WithError(err).WithField("rider", payload.UserID).Warn("Failed to bind rider socket")
		}
	}

	log.WithFields(log.Fields{
		"socket": s.ID,
		"user":   payload.UserID,
		"role":   payload.Role,
	}).Info("Socket joined room")
}

func (h *Handler) handleLocation(ctx context.Context, s *Session, data json.RawMessage) {
	var payload models.LocationPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == "" {
		log.WithField("socket", s.ID).Warn("Dropping malformed location update")
		return
	}

	point := models.NewGeoPoint(payload.Location)
	if err := h.Captains.UpdatePresence(ctx, payload.UserID, s.ID, &point); err != nil {
		log.WithError(err).WithField("captain", payload.UserID).Warn("Failed to update captain location")
	}
}

func newSocketID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "socket-unknown"
	}
	return hex.EncodeToString(b)
}
