package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleClass is the service tier a captain's vehicle belongs to.
type VehicleClass string

const (
	ClassStandard VehicleClass = "standard"
	ClassMoto     VehicleClass = "moto"
	ClassAuto     VehicleClass = "auto"
)

// IsValidVehicleClass checks if a vehicle class is valid
func IsValidVehicleClass(c VehicleClass) bool {
	return c == ClassStandard || c == ClassMoto || c == ClassAuto
}

// Vehicle describes a captain's vehicle.
type Vehicle struct {
	Color    string       `bson:"color" json:"color"`
	Plate    string       `bson:"plate" json:"plate"`
	Capacity int          `bson:"capacity" json:"capacity"`
	Class    VehicleClass `bson:"class" json:"class"`
}

// Captain represents a vehicle operator account.
//
// Location is a pointer so that a captain who has never reported a position
// stores no location field at all. The geospatial matching query can only
// match documents that carry the field, which keeps unlocated captains out
// of radius searches.
type Captain struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Fullname     Fullname           `bson:"fullname" json:"fullname"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	SocketID     string             `bson:"socket_id,omitempty" json:"socket_id,omitempty"`
	IsAvailable  bool               `bson:"is_available" json:"is_available"`
	Vehicle      Vehicle            `bson:"vehicle" json:"vehicle"`
	Location     *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// RegisterCaptainRequest represents a captain registration request
type RegisterCaptainRequest struct {
	Fullname Fullname `json:"fullname"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Vehicle  Vehicle  `json:"vehicle"`
}
