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

var ErrRiderNotFound = errors.New("rider not found")

// MongoRiderCollection implements RiderCollection for MongoDB
type MongoRiderCollection struct {
	Collection *mongo.Collection
}

// InsertRider inserts a new rider into the database
func (c *MongoRiderCollection) InsertRider(ctx context.Context, rider models.Rider) (*models.Rider, error) {
	rider.CreatedAt = time.Now()
	rider.UpdatedAt = rider.CreatedAt

	res, err := c.Collection.InsertOne(ctx, rider)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rider.ID = oid
	}
	return &rider, nil
}

// FindRiderByID finds a rider by their ID
func (c *MongoRiderCollection) FindRiderByID(ctx context.Context, id string) (*models.Rider, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRiderNotFound
	}

	var rider models.Rider
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}
	return &rider, nil
}

// FindRiderByEmail finds a rider by their email
func (c *MongoRiderCollection) FindRiderByEmail(ctx context.Context, email string) (*models.Rider, error) {
	var rider models.Rider
	err := c.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&rider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}
	return &rider, nil
}

// UpdateRiderSocket overwrites a rider's socket binding, last-write-wins.
func (c *MongoRiderCollection) UpdateRiderSocket(ctx context.Context, id, socketID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrRiderNotFound
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"socket_id": socketID, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRiderNotFound
	}
	return nil
}
