package notify

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ride-dispatch/internal/models"
	"github.com/ukydev/ride-dispatch/internal/ws"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubCaptains and stubRiders satisfy the collection interfaces with no-ops;
// fanout tests only exercise in-process delivery.
type stubCaptains struct{}

func (stubCaptains) InsertCaptain(context.Context, models.Captain) (*models.Captain, error) {
	return nil, nil
}
func (stubCaptains) FindCaptainByID(context.Context, string) (*models.Captain, error) {
	return nil, nil
}
func (stubCaptains) FindCaptainByEmail(context.Context, string) (*models.Captain, error) {
	return nil, nil
}
func (stubCaptains) SetAvailability(context.Context, string, bool) error { return nil }
func (stubCaptains) UpdatePresence(context.Context, string, string, *models.GeoPoint) error {
	return nil
}
func (stubCaptains) ClearSocket(context.Context, string) error { return nil }
func (stubCaptains) FindAvailableInRadius(context.Context, models.Coordinate, float64) ([]models.Captain, error) {
	return nil, nil
}

type stubRiders struct{}

func (stubRiders) InsertRider(context.Context, models.Rider) (*models.Rider, error) {
	return nil, nil
}
func (stubRiders) FindRiderByID(context.Context, string) (*models.Rider, error)    { return nil, nil }
func (stubRiders) FindRiderByEmail(context.Context, string) (*models.Rider, error) { return nil, nil }
func (stubRiders) UpdateRiderSocket(context.Context, string, string) error         { return nil }

func dialAndJoin(t *testing.T, serverURL, userID string, role models.Role, hub *ws.Hub, want int) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	data, _ := json.Marshal(models.JoinPayload{UserID: userID, Role: role})
	require.NoError(t, conn.WriteJSON(models.Event{Event: models.EventJoin, Data: data}))

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() < want && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, want, hub.Count())
	return conn
}

func TestFanout_NewRide(t *testing.T) {
	hub := ws.NewHub()
	server := httptest.NewServer(ws.NewHandler(hub, stubCaptains{}, stubRiders{}))
	defer server.Close()

	connected := primitive.NewObjectID()
	unbound := primitive.NewObjectID()
	conn := dialAndJoin(t, server.URL, connected.Hex(), models.RoleCaptain, hub, 1)

	fanout := NewFanout(hub)
	ride := models.RideWithRider{
		Ride: models.Ride{
			ID:     primitive.NewObjectID(),
			Rider:  primitive.NewObjectID(),
			Status: models.StatusRequested,
			Code:   "482913",
		},
		RiderInfo: models.RiderInfo{Fullname: models.Fullname{Firstname: "Aslan"}},
	}
	fanout.NewRide([]models.Captain{
		{ID: connected, SocketID: "sock-live"},
		{ID: unbound}, // no socket binding, silently skipped
	}, ride)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventNewRide, event.Event)
	assert.NotContains(t, string(event.Data), "482913", "code never reaches captains")
	assert.Contains(t, string(event.Data), "Aslan")
}

func TestFanout_RideConfirmed(t *testing.T) {
	hub := ws.NewHub()
	server := httptest.NewServer(ws.NewHandler(hub, stubCaptains{}, stubRiders{}))
	defer server.Close()

	riderID := primitive.NewObjectID()
	conn := dialAndJoin(t, server.URL, riderID.Hex(), models.RoleRider, hub, 1)

	captainID := primitive.NewObjectID()
	NewFanout(hub).RideConfirmed(&models.Ride{
		ID:      primitive.NewObjectID(),
		Rider:   riderID,
		Captain: &captainID,
		Status:  models.StatusAccepted,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventRideConfirmed, event.Event)

	var ride models.Ride
	require.NoError(t, json.Unmarshal(event.Data, &ride))
	assert.Equal(t, models.StatusAccepted, ride.Status)
}

func TestFanout_NoRecipientIsHarmless(t *testing.T) {
	fanout := NewFanout(ws.NewHub())

	// Nobody connected; these must simply not panic.
	fanout.NewRide([]models.Captain{{ID: primitive.NewObjectID(), SocketID: "stale"}}, models.RideWithRider{})
	fanout.RideStarted(&models.Ride{Rider: primitive.NewObjectID()})
	fanout.RideEnded(&models.Ride{Rider: primitive.NewObjectID()})
}
