package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideStatus is a ride's position in its lifecycle.
type RideStatus string

const (
	StatusRequested RideStatus = "requested"
	StatusAccepted  RideStatus = "accepted"
	StatusOngoing   RideStatus = "ongoing"
	StatusCompleted RideStatus = "completed"
	StatusCancelled RideStatus = "cancelled"
)

// FareQuote holds the per-class prices for a trip plus the human readable
// distance and duration the quote was computed from.
type FareQuote struct {
	Standard int    `bson:"standard" json:"standard"`
	Moto     int    `bson:"moto" json:"moto"`
	Auto     int    `bson:"auto" json:"auto"`
	Distance string `bson:"distance" json:"distance"`
	Duration string `bson:"duration" json:"duration"`
}

// PriceFor returns the quoted price for a vehicle class.
func (q FareQuote) PriceFor(class VehicleClass) (int, bool) {
	switch class {
	case ClassStandard:
		return q.Standard, true
	case ClassMoto:
		return q.Moto, true
	case ClassAuto:
		return q.Auto, true
	}
	return 0, false
}

// Ride represents one trip request from creation through completion or
// cancellation.
//
// Code is the one-time code the rider hands to the captain before the trip
// may start. It is written once at creation, excluded from default reads by
// projection in the ride collection, and never serialized to JSON.
type Ride struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Rider        primitive.ObjectID  `bson:"rider" json:"rider"`
	Captain      *primitive.ObjectID `bson:"captain,omitempty" json:"captain,omitempty"`
	Pickup       Place               `bson:"pickup" json:"pickup"`
	Destination  Place               `bson:"destination" json:"destination"`
	VehicleClass VehicleClass        `bson:"vehicle_class" json:"vehicle_class"`
	FareQuote    FareQuote           `bson:"fare_quote" json:"fare_quote"`
	FinalFare    int                 `bson:"final_fare" json:"final_fare"`
	Code         string              `bson:"code,omitempty" json:"-"`
	Status       RideStatus          `bson:"status" json:"status"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// RideWithRider is a ride joined with its rider's public identity, as
// delivered to candidate captains.
type RideWithRider struct {
	Ride
	RiderInfo RiderInfo `json:"rider_info"`
}

// RiderInfo is the subset of a rider's account shared with captains.
type RiderInfo struct {
	ID       primitive.ObjectID `json:"id"`
	Fullname Fullname           `json:"fullname"`
}
