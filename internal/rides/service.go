package rides

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/db"
	"github.com/ukydev/ride-dispatch/internal/fare"
	"github.com/ukydev/ride-dispatch/internal/maps"
	"github.com/ukydev/ride-dispatch/internal/models"
	"github.com/ukydev/ride-dispatch/internal/observability"
	"github.com/ukydev/ride-dispatch/internal/stream"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoDriversAvailable = errors.New("no captains available nearby")
	ErrInvalidRequest     = errors.New("invalid ride request")
)

// Notifier delivers lifecycle events to the affected participants.
type Notifier interface {
	NewRide(candidates []models.Captain, ride models.RideWithRider)
	RideConfirmed(ride *models.Ride)
	RideStarted(ride *models.Ride)
	RideEnded(ride *models.Ride)
}

// Service orchestrates ride dispatch and the ride lifecycle. Every status
// transition goes through the ride collection's conditional updates; the
// service never reads a status and writes a new one in separate steps.
type Service struct {
	rides        db.RideCollection
	captains     db.CaptainCollection
	riders       db.RiderCollection
	oracle       maps.Oracle
	estimator    *fare.Estimator
	notifier     Notifier
	events       *stream.Publisher
	searchRadius float64
}

// NewService creates the dispatch service. searchRadiusMeters bounds the
// candidate search around the pickup point.
func NewService(
	rideColl db.RideCollection,
	captains db.CaptainCollection,
	riders db.RiderCollection,
	oracle maps.Oracle,
	estimator *fare.Estimator,
	notifier Notifier,
	events *stream.Publisher,
	searchRadiusMeters float64,
) *Service {
	return &Service{
		rides:        rideColl,
		captains:     captains,
		riders:       riders,
		oracle:       oracle,
		estimator:    estimator,
		notifier:     notifier,
		events:       events,
		searchRadius: searchRadiusMeters,
	}
}

// GetFare quotes a trip between two addresses.
func (s *Service) GetFare(ctx context.Context, pickup, destination string) (*models.FareQuote, error) {
	return s.estimator.Estimate(ctx, pickup, destination)
}

// CreateRide resolves the trip, finds candidate captains around the pickup
// point, persists the ride and notifies the candidates. When no captain is
// in range, nothing is persisted. The final fare is pinned to the quoted
// price for the chosen class and never recomputed.
func (s *Service) CreateRide(ctx context.Context, riderID, pickup, destination string, class models.VehicleClass, quote models.FareQuote) (*models.RideWithRider, error) {
	if !models.IsValidVehicleClass(class) {
		return nil, fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidRequest, class)
	}
	price, ok := quote.PriceFor(class)
	if !ok || price <= 0 {
		return nil, fmt.Errorf("%w: quote has no price for class %q", ErrInvalidRequest, class)
	}
	riderOID, err := primitive.ObjectIDFromHex(riderID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad rider id", ErrInvalidRequest)
	}

	pickupCoords, err := s.oracle.ResolveAddress(ctx, pickup)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup: %v", fare.ErrQuoteUnavailable, err)
	}
	destCoords, err := s.oracle.ResolveAddress(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("%w: destination: %v", fare.ErrQuoteUnavailable, err)
	}

	candidates, err := s.captains.FindAvailableInRadius(ctx, pickupCoords, s.searchRadius)
	if err != nil {
		return nil, fmt.Errorf("captain search failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoDriversAvailable
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	ride := models.Ride{
		Rider:        riderOID,
		Pickup:       models.NewPlace(pickup, pickupCoords),
		Destination:  models.NewPlace(destination, destCoords),
		VehicleClass: class,
		FareQuote:    quote,
		FinalFare:    price,
		Code:         code,
		Status:       models.StatusRequested,
	}

	created, err := s.rides.InsertRide(ctx, ride)
	if err != nil {
		return nil, fmt.Errorf("failed to persist ride: %w", err)
	}
	observability.RidesCreated.Inc()
	s.events.Publish(created)

	withRider := models.RideWithRider{Ride: *created}
	if rider, err := s.riders.FindRiderByID(ctx, riderID); err == nil {
		withRider.RiderInfo = models.RiderInfo{ID: rider.ID, Fullname: rider.Fullname}
	} else {
		log.WithError(err).WithField("rider", riderID).Warn("Failed to attach rider identity")
	}

	// Notification is best-effort: the ride stays committed even if no
	// candidate can be reached.
	s.notifier.NewRide(candidates, withRider)

	log.WithFields(log.Fields{
		"ride":       created.ID.Hex(),
		"rider":      riderID,
		"class":      class,
		"candidates": len(candidates),
	}).Info("Ride created")

	return &withRider, nil
}

// GetRide returns a ride, including its one-time code, to the rider who
// created it. Riders reconnecting after a dropped socket use this to recover
// the code and current status; nobody else can read the code at all.
func (s *Service) GetRide(ctx context.Context, rideID, riderID string) (*models.Ride, error) {
	ride, err := s.rides.FindRideWithCode(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Rider.Hex() != riderID {
		return nil, db.ErrRideNotFound
	}
	return ride, nil
}

// ConfirmRide claims a requested ride for a captain. Under concurrent
// claims exactly one captain wins; the rest see ErrRideUnavailable.
func (s *Service) ConfirmRide(ctx context.Context, rideID, captainID string) (*models.Ride, error) {
	ride, err := s.rides.ClaimRide(ctx, rideID, captainID)
	if err != nil {
		if errors.Is(err, db.ErrRideUnavailable) {
			observability.ClaimConflicts.Inc()
		}
		return nil, err
	}

	s.events.Publish(ride)
	s.notifier.RideConfirmed(ride)

	log.WithFields(log.Fields{
		"ride":    rideID,
		"captain": captainID,
	}).Info("Ride confirmed")

	return ride, nil
}

// StartRide moves an accepted ride to ongoing, gated on the one-time code
// the rider hands to the captain.
func (s *Service) StartRide(ctx context.Context, rideID, captainID, code string) (*models.Ride, error) {
	code = strings.TrimSpace(code)
	if len(code) != codeLength {
		return nil, db.ErrInvalidCode
	}

	ride, err := s.rides.BeginRide(ctx, rideID, captainID, code)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ride)
	s.notifier.RideStarted(ride)

	log.WithFields(log.Fields{
		"ride":    rideID,
		"captain": captainID,
	}).Info("Ride started")

	return ride, nil
}

// EndRide completes an ongoing ride. The final fare was fixed at creation
// and is simply returned with the ride.
func (s *Service) EndRide(ctx context.Context, rideID, captainID string) (*models.Ride, error) {
	ride, err := s.rides.CompleteRide(ctx, rideID, captainID)
	if err != nil {
		return nil, err
	}
	observability.RidesCompleted.Inc()

	s.events.Publish(ride)
	s.notifier.RideEnded(ride)

	log.WithFields(log.Fields{
		"ride":    rideID,
		"captain": captainID,
		"fare":    ride.FinalFare,
	}).Info("Ride ended")

	return ride, nil
}

// CancelRide cancels a ride that has not started yet. Only the rider who
// created the ride can cancel it; for anyone else the conditional update
// matches nothing.
func (s *Service) CancelRide(ctx context.Context, rideID, riderID string) (*models.Ride, error) {
	ride, err := s.rides.CancelRide(ctx, rideID, riderID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ride)

	log.WithFields(log.Fields{
		"ride":  rideID,
		"rider": riderID,
	}).Info("Ride cancelled")
	return ride, nil
}
