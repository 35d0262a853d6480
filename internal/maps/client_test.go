package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ride-dispatch/internal/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, "test-key")
	return client, server
}

func TestClient_ResolveAddress(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.php", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "Dostyk Ave 91", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"lat": "43.238949", "lon": "76.889709", "display_name": "Dostyk Ave 91, Almaty"}]`))
	})
	defer server.Close()

	coord, err := client.ResolveAddress(context.Background(), "Dostyk Ave 91")
	require.NoError(t, err)
	assert.InDelta(t, 43.238949, coord.Lat, 1e-9)
	assert.InDelta(t, 76.889709, coord.Lng, 1e-9)
}

func TestClient_ResolveAddress_NoResults(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	_, err := client.ResolveAddress(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestClient_ResolveAddress_ServerError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.ResolveAddress(context.Background(), "Dostyk Ave 91")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Route(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		// The directions path carries lng,lat pairs.
		assert.Contains(t, r.URL.Path, "/directions/driving/76.889709,43.238949;76.851248,43.222015")
		w.Write([]byte(`{"code": "Ok", "routes": [{"distance": 10000, "duration": 1500}]}`))
	})
	defer server.Close()

	route, err := client.Route(context.Background(),
		models.Coordinate{Lat: 43.238949, Lng: 76.889709},
		models.Coordinate{Lat: 43.222015, Lng: 76.851248})
	require.NoError(t, err)
	assert.Equal(t, float64(10000), route.DistanceMeters)
	assert.Equal(t, float64(1500), route.DurationSeconds)
}

func TestClient_Route_NotOk(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	})
	defer server.Close()

	_, err := client.Route(context.Background(),
		models.Coordinate{Lat: 43.238949, Lng: 76.889709},
		models.Coordinate{Lat: 43.222015, Lng: 76.851248})
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestClient_Suggest(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/autocomplete.php", r.URL.Path)
		w.Write([]byte(`[{"display_name": "Dostyk Ave 91, Almaty"}, {"display_name": "Dostyk Ave 97, Almaty"}]`))
	})
	defer server.Close()

	suggestions, err := client.Suggest(context.Background(), "Dostyk")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Dostyk Ave 91, Almaty", suggestions[0].Description)
}

func TestClient_Suggest_TooShort(t *testing.T) {
	called := false
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer server.Close()

	suggestions, err := client.Suggest(context.Background(), "D")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.False(t, called)
}

func TestClient_Suggest_UpstreamFailureIsForgiven(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer server.Close()

	suggestions, err := client.Suggest(context.Background(), "Dostyk")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
