package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/ride-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// earthRadiusMeters is Earth's mean radius, used to convert a search radius
// in meters to the angular radius $centerSphere expects.
const earthRadiusMeters = 6371000

var ErrCaptainNotFound = errors.New("captain not found")

// MongoCaptainCollection implements CaptainCollection for MongoDB
type MongoCaptainCollection struct {
	Collection *mongo.Collection
}

// InsertCaptain inserts a new captain into the database
func (c *MongoCaptainCollection) InsertCaptain(ctx context.Context, captain models.Captain) (*models.Captain, error) {
	captain.CreatedAt = time.Now()
	captain.UpdatedAt = captain.CreatedAt

	res, err := c.Collection.InsertOne(ctx, captain)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		captain.ID = oid
	}
	return &captain, nil
}

// FindCaptainByID finds a captain by their ID
func (c *MongoCaptainCollection) FindCaptainByID(ctx context.Context, id string) (*models.Captain, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCaptainNotFound
	}

	var captain models.Captain
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&captain)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCaptainNotFound
		}
		return nil, err
	}
	return &captain, nil
}

// FindCaptainByEmail finds a captain by their email
func (c *MongoCaptainCollection) FindCaptainByEmail(ctx context.Context, email string) (*models.Captain, error) {
	var captain models.Captain
	err := c.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&captain)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCaptainNotFound
		}
		return nil, err
	}
	return &captain, nil
}

// SetAvailability toggles whether a captain is eligible for matching.
func (c *MongoCaptainCollection) SetAvailability(ctx context.Context, id string, available bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCaptainNotFound
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"is_available": available, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCaptainNotFound
	}
	return nil
}

// UpdatePresence overwrites a captain's socket binding and, when provided,
// their live location. Updates are last-write-wins; no ordering is enforced.
func (c *MongoCaptainCollection) UpdatePresence(ctx context.Context, id, socketID string, location *models.GeoPoint) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCaptainNotFound
	}

	set := bson.M{"socket_id": socketID, "updated_at": time.Now()}
	if location != nil {
		set["location"] = location
	}

	res, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCaptainNotFound
	}
	return nil
}

// ClearSocket removes a dropped connection's binding from whichever captain
// holds it.
func (c *MongoCaptainCollection) ClearSocket(ctx context.Context, socketID string) error {
	_, err := c.Collection.UpdateMany(ctx,
		bson.M{"socket_id": socketID},
		bson.M{"$unset": bson.M{"socket_id": ""}},
	)
	return err
}

// FindAvailableInRadius returns the available captains within radiusMeters
// of center. A captain who has never reported a location stores no location
// field and can never match the geo filter. The result is unsorted.
func (c *MongoCaptainCollection) FindAvailableInRadius(ctx context.Context, center models.Coordinate, radiusMeters float64) ([]models.Captain, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{center.Lng, center.Lat},
					radiusMeters / earthRadiusMeters,
				},
			},
		},
		"is_available": true,
	}

	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var captains []models.Captain
	if err := cursor.All(ctx, &captains); err != nil {
		return nil, err
	}
	return captains, nil
}
