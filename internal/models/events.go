package models

import "encoding/json"

// Realtime event names, outbound and inbound.
const (
	EventNewRide        = "new-ride"
	EventRideConfirmed  = "ride-confirmed"
	EventRideStarted    = "ride-started"
	EventRideEnded      = "ride-ended"
	EventJoin           = "join"
	EventUpdateLocation = "update-location"
)

// Event is the tagged envelope exchanged over the realtime channel.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinPayload binds a connection to the caller's identity room.
type JoinPayload struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// LocationPayload carries a captain's live position update.
type LocationPayload struct {
	UserID   string     `json:"user_id"`
	Location Coordinate `json:"location"`
}
