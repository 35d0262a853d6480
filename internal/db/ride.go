package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/ride-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrRideNotFound = errors.New("ride not found")
	// ErrRideUnavailable means the ride was already claimed by another
	// captain, or no longer exists.
	ErrRideUnavailable    = errors.New("ride unavailable")
	ErrInvalidCode        = errors.New("invalid code")
	ErrRideNotClaimable   = errors.New("ride not claimable by this captain")
	ErrRideNotActive      = errors.New("ride not active")
	ErrRideNotCancellable = errors.New("ride not cancellable")
)

// excludeCode keeps the one-time code out of default reads. Only
// FindRideWithCode projects it back in.
var excludeCode = bson.M{"code": 0}

// MongoRideCollection implements RideCollection for MongoDB. Every status
// transition is a single FindOneAndUpdate keyed on the expected prior
// state, which is what guarantees at most one captain ever claims a ride
// under concurrent confirms.
type MongoRideCollection struct {
	Collection *mongo.Collection
}

// InsertRide persists a new ride document and returns it with its assigned id.
func (c *MongoRideCollection) InsertRide(ctx context.Context, ride models.Ride) (*models.Ride, error) {
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt

	res, err := c.Collection.InsertOne(ctx, ride)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ride.ID = oid
	}
	return &ride, nil
}

// FindRideByID finds a ride by its ID. The one-time code is not included.
func (c *MongoRideCollection) FindRideByID(ctx context.Context, id string) (*models.Ride, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRideNotFound
	}

	var ride models.Ride
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID},
		options.FindOne().SetProjection(excludeCode)).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

// FindRideWithCode finds a ride by its ID including the one-time code.
func (c *MongoRideCollection) FindRideWithCode(ctx context.Context, id string) (*models.Ride, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRideNotFound
	}

	var ride models.Ride
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

// ClaimRide atomically moves a ride from requested to accepted and binds the
// claiming captain. The filter requires status to still be requested, so
// when N captains race, exactly one update matches; the rest get
// ErrRideUnavailable.
func (c *MongoRideCollection) ClaimRide(ctx context.Context, id, captainID string) (*models.Ride, error) {
	rideID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRideUnavailable
	}
	capID, err := primitive.ObjectIDFromHex(captainID)
	if err != nil {
		return nil, ErrRideUnavailable
	}

	var ride models.Ride
	err = c.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": rideID, "status": models.StatusRequested},
		bson.M{"$set": bson.M{
			"status":     models.StatusAccepted,
			"captain":    capID,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludeCode),
	).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideUnavailable
		}
		return nil, err
	}
	return &ride, nil
}

// BeginRide atomically moves a ride from accepted to ongoing, keyed on the
// bound captain and the one-time code. The code comparison happens inside
// the conditional filter; a failed match changes nothing. The follow-up read
// only disambiguates which error to report.
func (c *MongoRideCollection) BeginRide(ctx context.Context, id, captainID, code string) (*models.Ride, error) {
	rideID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRideNotClaimable
	}
	capID, err := primitive.ObjectIDFromHex(captainID)
	if err != nil {
		return nil, ErrRideNotClaimable
	}

	var ride models.Ride
	err = c.Collection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":     rideID,
			"captain": capID,
			"status":  models.StatusAccepted,
			"code":    code,
		},
		bson.M{"$set": bson.M{
			"status":     models.StatusOngoing,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludeCode),
	).Decode(&ride)
	if err == nil {
		return &ride, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	current, ferr := c.FindRideByID(ctx, id)
	if ferr != nil {
		return nil, ErrRideNotClaimable
	}
	if current.Status == models.StatusAccepted && current.Captain != nil && *current.Captain == capID {
		return nil, ErrInvalidCode
	}
	return nil, ErrRideNotClaimable
}

// CompleteRide atomically moves a ride from ongoing to completed, keyed on
// the bound captain.
func (c *MongoRideCollection) CompleteRide(ctx context.Context, id, captainID string) (*models.Ride, error) {
	rideID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRideNotActive
	}
	capID, err := primitive.ObjectIDFromHex(captainID)
	if err != nil {
		return nil, ErrRideNotActive
	}

	var ride models.Ride
	err = c.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": rideID, "captain": capID, "status": models.StatusOngoing},
		bson.M{"$set": bson.M{
			"status":     models.StatusCompleted,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludeCode),
	).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideNotActive
		}
		return nil, err
	}
	return &ride, nil
}

// CancelRide atomically cancels a ride that is still requested or accepted.
// The filter binds the owning rider, so a ride can only be cancelled by the
// rider who created it.
func (c *MongoRideCollection) CancelRide(ctx context.Context, id, riderID string) (*models.Ride, error) {
	rideID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRideNotCancellable
	}
	riderOID, err := primitive.ObjectIDFromHex(riderID)
	if err != nil {
		return nil, ErrRideNotCancellable
	}

	var ride models.Ride
	err = c.Collection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":    rideID,
			"rider":  riderOID,
			"status": bson.M{"$in": []models.RideStatus{models.StatusRequested, models.StatusAccepted}},
		},
		bson.M{"$set": bson.M{
			"status":     models.StatusCancelled,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludeCode),
	).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRideNotCancellable
		}
		return nil, err
	}
	return &ride, nil
}
