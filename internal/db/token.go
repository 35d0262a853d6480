package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// blacklistedToken is a revoked JWT, kept until its expiry by a TTL index.
type blacklistedToken struct {
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoTokenCollection implements TokenCollection for MongoDB
type MongoTokenCollection struct {
	Collection *mongo.Collection
}

// BlacklistToken records a token as revoked until it expires.
func (c *MongoTokenCollection) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := c.Collection.InsertOne(ctx, blacklistedToken{
		Token:     token,
		ExpiresAt: expiresAt,
	})
	return err
}

// IsBlacklisted reports whether a token has been revoked.
func (c *MongoTokenCollection) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := c.Collection.FindOne(ctx, bson.M{"token": token}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
