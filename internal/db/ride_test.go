package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ride-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func testRideCollection(t *testing.T) (*MongoRideCollection, *mongo.Collection) {
	t.Helper()
	client, err := ConnectMongo("mongodb://localhost:27017")
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("test_ride_dispatch").Collection("rides")
	collection.Drop(context.Background())
	return &MongoRideCollection{Collection: collection}, collection
}

func seedRide(t *testing.T, rides *MongoRideCollection, status models.RideStatus, captain *primitive.ObjectID) *models.Ride {
	t.Helper()
	ride := models.Ride{
		Rider:        primitive.NewObjectID(),
		Captain:      captain,
		Pickup:       models.Place{Address: "A", Coordinates: []float64{76.9, 43.2}},
		Destination:  models.Place{Address: "B", Coordinates: []float64{76.8, 43.3}},
		VehicleClass: models.ClassStandard,
		FareQuote:    models.FareQuote{Standard: 200, Moto: 100, Auto: 130},
		FinalFare:    200,
		Code:         "482913",
		Status:       status,
	}
	created, err := rides.InsertRide(context.Background(), ride)
	require.NoError(t, err)
	return created
}

func TestMongoRideCollection_CodeHiddenByDefault(t *testing.T) {
	rides, _ := testRideCollection(t)
	created := seedRide(t, rides, models.StatusRequested, nil)

	found, err := rides.FindRideByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, found.Code)

	withCode, err := rides.FindRideWithCode(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "482913", withCode.Code)
}

func TestMongoRideCollection_ClaimRide(t *testing.T) {
	rides, _ := testRideCollection(t)
	created := seedRide(t, rides, models.StatusRequested, nil)
	captainID := primitive.NewObjectID()

	claimed, err := rides.ClaimRide(context.Background(), created.ID.Hex(), captainID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, claimed.Status)
	require.NotNil(t, claimed.Captain)
	assert.Equal(t, captainID, *claimed.Captain)

	// A second claim must lose.
	_, err = rides.ClaimRide(context.Background(), created.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrRideUnavailable)

	// The winning captain binding is untouched.
	current, err := rides.FindRideByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, captainID, *current.Captain)
}

func TestMongoRideCollection_ConcurrentClaims(t *testing.T) {
	rides, _ := testRideCollection(t)
	created := seedRide(t, rides, models.StatusRequested, nil)

	const contenders = 8
	var wg sync.WaitGroup
	winners := make([]string, 0, contenders)
	var mu sync.Mutex

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			captainID := primitive.NewObjectID().Hex()
			if _, err := rides.ClaimRide(context.Background(), created.ID.Hex(), captainID); err == nil {
				mu.Lock()
				winners = append(winners, captainID)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1, "exactly one concurrent claim must win")

	current, err := rides.FindRideByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, current.Status)
	require.NotNil(t, current.Captain)
	assert.Equal(t, winners[0], current.Captain.Hex())
}

func TestMongoRideCollection_BeginRide(t *testing.T) {
	rides, _ := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusAccepted, &captainID)

	started, err := rides.BeginRide(context.Background(), created.ID.Hex(), captainID.Hex(), "482913")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOngoing, started.Status)
}

func TestMongoRideCollection_BeginRide_WrongCode(t *testing.T) {
	rides, _ := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusAccepted, &captainID)

	_, err := rides.BeginRide(context.Background(), created.ID.Hex(), captainID.Hex(), "482914")
	assert.ErrorIs(t, err, ErrInvalidCode)

	current, err := rides.FindRideByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, current.Status, "failed code check leaves status unchanged")
}

func TestMongoRideCollection_BeginRide_WrongCaptain(t *testing.T) {
	rides, _ := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusAccepted, &captainID)

	_, err := rides.BeginRide(context.Background(), created.ID.Hex(), primitive.NewObjectID().Hex(), "482913")
	assert.ErrorIs(t, err, ErrRideNotClaimable)
}

func TestMongoRideCollection_BeginRide_NotAccepted(t *testing.T) {
	rides, _ := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusRequested, &captainID)

	_, err := rides.BeginRide(context.Background(), created.ID.Hex(), captainID.Hex(), "482913")
	assert.ErrorIs(t, err, ErrRideNotClaimable)
}

func TestMongoRideCollection_CompleteRide(t *testing.T) {
	rides, _ := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusOngoing, &captainID)

	completed, err := rides.CompleteRide(context.Background(), created.ID.Hex(), captainID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, 200, completed.FinalFare)
}

func TestMongoRideCollection_CompleteRide_NotOngoing(t *testing.T) {
	rides, _ := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusAccepted, &captainID)

	_, err := rides.CompleteRide(context.Background(), created.ID.Hex(), captainID.Hex())
	assert.ErrorIs(t, err, ErrRideNotActive)

	current, err := rides.FindRideByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, current.Status)
}

func TestMongoRideCollection_CancelRide(t *testing.T) {
	rides, _ := testRideCollection(t)

	requested := seedRide(t, rides, models.StatusRequested, nil)
	cancelled, err := rides.CancelRide(context.Background(), requested.ID.Hex(), requested.Rider.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	captainID := primitive.NewObjectID()
	ongoing := seedRide(t, rides, models.StatusOngoing, &captainID)
	_, err = rides.CancelRide(context.Background(), ongoing.ID.Hex(), ongoing.Rider.Hex())
	assert.ErrorIs(t, err, ErrRideNotCancellable)
}

func TestMongoRideCollection_CancelRide_WrongRider(t *testing.T) {
	rides, _ := testRideCollection(t)
	created := seedRide(t, rides, models.StatusRequested, nil)

	_, err := rides.CancelRide(context.Background(), created.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrRideNotCancellable)

	// The ride is untouched and the owner can still cancel it.
	current, err := rides.FindRideByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, current.Status)

	cancelled, err := rides.CancelRide(context.Background(), created.ID.Hex(), created.Rider.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestMongoRideCollection_LifecyclePath(t *testing.T) {
	rides, collection := testRideCollection(t)
	captainID := primitive.NewObjectID()
	created := seedRide(t, rides, models.StatusRequested, nil)

	_, err := rides.ClaimRide(context.Background(), created.ID.Hex(), captainID.Hex())
	require.NoError(t, err)
	_, err = rides.BeginRide(context.Background(), created.ID.Hex(), captainID.Hex(), "482913")
	require.NoError(t, err)
	done, err := rides.CompleteRide(context.Background(), created.ID.Hex(), captainID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, 200, done.FinalFare, "final fare fixed at creation")

	// Completed rides cannot be re-claimed, restarted or cancelled.
	_, err = rides.ClaimRide(context.Background(), created.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrRideUnavailable)
	_, err = rides.BeginRide(context.Background(), created.ID.Hex(), captainID.Hex(), "482913")
	assert.ErrorIs(t, err, ErrRideNotClaimable)
	_, err = rides.CancelRide(context.Background(), created.ID.Hex(), created.Rider.Hex())
	assert.ErrorIs(t, err, ErrRideNotCancellable)

	var raw bson.M
	require.NoError(t, collection.FindOne(context.Background(), bson.M{"_id": created.ID}).Decode(&raw))
	assert.Equal(t, "482913", raw["code"], "code remains stored, just never projected by default")
}
