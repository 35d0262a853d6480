package notify

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/models"
	"github.com/ukydev/ride-dispatch/internal/ws"
)

// Fanout delivers lifecycle events to the affected rider or captains over
// the hub. Delivery is fire-and-forget: a recipient without a live
// connection simply misses the event and recovers state on reconnect.
type Fanout struct {
	hub *ws.Hub
}

// NewFanout creates a fanout over a connection hub.
func NewFanout(hub *ws.Hub) *Fanout {
	return &Fanout{hub: hub}
}

// NewRide notifies every candidate captain that currently has a live socket
// binding. Each delivery is independent; one unreachable captain never
// blocks the rest.
func (f *Fanout) NewRide(candidates []models.Captain, ride models.RideWithRider) {
	payload, err := json.Marshal(ride)
	if err != nil {
		log.WithError(err).Error("Failed to encode new-ride event")
		return
	}

	notified := 0
	for _, captain := range candidates {
		if captain.SocketID == "" {
			continue
		}
		f.hub.Emit(ws.CaptainRoom(captain.ID.Hex()), models.Event{
			Event: models.EventNewRide,
			Data:  payload,
		})
		notified++
	}

	log.WithFields(log.Fields{
		"ride":       ride.ID.Hex(),
		"candidates": len(candidates),
		"notified":   notified,
	}).Info("Dispatched new-ride notifications")
}

// RideConfirmed notifies the ride's rider that a captain accepted.
func (f *Fanout) RideConfirmed(ride *models.Ride) {
	f.toRider(models.EventRideConfirmed, ride)
}

// RideStarted notifies the ride's rider that the trip began.
func (f *Fanout) RideStarted(ride *models.Ride) {
	f.toRider(models.EventRideStarted, ride)
}

// RideEnded notifies the ride's rider that the trip completed.
func (f *Fanout) RideEnded(ride *models.Ride) {
	f.toRider(models.EventRideEnded, ride)
}

func (f *Fanout) toRider(event string, ride *models.Ride) {
	payload, err := json.Marshal(ride)
	if err != nil {
		log.WithError(err).WithField("event", event).Error("Failed to encode ride event")
		return
	}
	f.hub.Emit(ws.RiderRoom(ride.Rider.Hex()), models.Event{
		Event: event,
		Data:  payload,
	})
}
