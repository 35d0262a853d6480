package db

import (
	"context"
	"time"

	"github.com/ukydev/ride-dispatch/internal/models"
)

// RideCollection defines the interface for ride document operations. All
// status transitions are single conditional updates at the storage layer;
// there is no read-then-write path for changing a ride's status.
type RideCollection interface {
	InsertRide(ctx context.Context, ride models.Ride) (*models.Ride, error)
	FindRideByID(ctx context.Context, id string) (*models.Ride, error)
	FindRideWithCode(ctx context.Context, id string) (*models.Ride, error)
	ClaimRide(ctx context.Context, id, captainID string) (*models.Ride, error)
	BeginRide(ctx context.Context, id, captainID, code string) (*models.Ride, error)
	CompleteRide(ctx context.Context, id, captainID string) (*models.Ride, error)
	CancelRide(ctx context.Context, id, riderID string) (*models.Ride, error)
}

// CaptainCollection defines the interface for captain account and presence
// operations, including the geospatial candidate search.
type CaptainCollection interface {
	InsertCaptain(ctx context.Context, captain models.Captain) (*models.Captain, error)
	FindCaptainByID(ctx context.Context, id string) (*models.Captain, error)
	FindCaptainByEmail(ctx context.Context, email string) (*models.Captain, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdatePresence(ctx context.Context, id, socketID string, location *models.GeoPoint) error
	ClearSocket(ctx context.Context, socketID string) error
	FindAvailableInRadius(ctx context.Context, center models.Coordinate, radiusMeters float64) ([]models.Captain, error)
}

// RiderCollection defines the interface for rider account operations.
type RiderCollection interface {
	InsertRider(ctx context.Context, rider models.Rider) (*models.Rider, error)
	FindRiderByID(ctx context.Context, id string) (*models.Rider, error)
	FindRiderByEmail(ctx context.Context, email string) (*models.Rider, error)
	UpdateRiderSocket(ctx context.Context, id, socketID string) error
}

// TokenCollection defines the interface for the logout token blacklist.
type TokenCollection interface {
	BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
