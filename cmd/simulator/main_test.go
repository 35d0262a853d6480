package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
)

func TestJitterLocation_Bounds(t *testing.T) {
	base := Location{Lat: 51.5074, Lng: -0.1278}
	meters := 1000.0

	maxDLat := meters / 111320.0
	maxDLng := meters / (111320.0 * math.Cos(base.Lat*math.Pi/180))

	for i := 0; i < 100; i++ {
		loc := jitterLocation(base, meters)
		if math.Abs(loc.Lat-base.Lat) > maxDLat {
			t.Errorf("Latitude jitter out of bounds: %f", loc.Lat-base.Lat)
		}
		if math.Abs(loc.Lng-base.Lng) > maxDLng {
			t.Errorf("Longitude jitter out of bounds: %f", loc.Lng-base.Lng)
		}
	}
}

func TestJitterLocation_ZeroMeters(t *testing.T) {
	base := Location{Lat: 48.8566, Lng: 2.3522}

	loc := jitterLocation(base, 0)
	if loc.Lat != base.Lat {
		t.Errorf("Expected latitude %f, got %f", base.Lat, loc.Lat)
	}
	if loc.Lng != base.Lng {
		t.Errorf("Expected longitude %f, got %f", base.Lng, loc.Lng)
	}
}

func TestRegisterCaptain_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/api/auth/captain/register" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode register body: %v", err)
		}
		if body["email"] == "" {
			t.Error("Register body missing email")
		}
		if body["vehicle"] == nil {
			t.Error("Register body missing vehicle")
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "test-token",
			"user":  map[string]string{"id": "captain-1"},
		})
	}))
	defer server.Close()

	c, err := registerCaptain(server.URL, 0)
	if err != nil {
		t.Fatalf("registerCaptain failed: %v", err)
	}
	if c.ID != "captain-1" {
		t.Errorf("Expected captain ID 'captain-1', got %s", c.ID)
	}
	if c.Token != "test-token" {
		t.Errorf("Expected token 'test-token', got %s", c.Token)
	}
	if c.Pos.Lat == 0 && c.Pos.Lng == 0 {
		t.Error("Captain position was not seeded")
	}
}

func TestRegisterCaptain_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := registerCaptain(server.URL, 0); err == nil {
		t.Error("Expected error for non-201 response, got nil")
	}
}

func TestSetAvailable_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/api/captains/availability" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}

		var body map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode availability body: %v", err)
		}
		if !body["available"] {
			t.Error("Expected available=true in body")
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := &captain{ID: "captain-1", Token: "test-token"}
	if err := setAvailable(server.URL, c); err != nil {
		t.Fatalf("setAvailable failed: %v", err)
	}
}

func TestSetAvailable_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := &captain{ID: "captain-1", Token: "stale-token"}
	if err := setAvailable(server.URL, c); err == nil {
		t.Error("Expected error for non-200 response, got nil")
	}
}

func TestMainLogic_CaptainCount(t *testing.T) {
	testCases := []struct {
		envValue string
		expected int
	}{
		{"", 5},        // default
		{"3", 3},       // valid number
		{"invalid", 5}, // invalid number, should use default
		{"0", 5},       // non-positive, should use default
		{"-2", 5},      // non-positive, should use default
		{"50", 50},     // large number
	}

	original := os.Getenv("CAPTAIN_COUNT")
	defer os.Setenv("CAPTAIN_COUNT", original)

	for _, tc := range testCases {
		if tc.envValue != "" {
			os.Setenv("CAPTAIN_COUNT", tc.envValue)
		} else {
			os.Unsetenv("CAPTAIN_COUNT")
		}

		// Simulate the logic from main()
		count := 5
		if v := os.Getenv("CAPTAIN_COUNT"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				count = n
			}
		}

		if count != tc.expected {
			t.Errorf("For env value '%s', expected captain count %d, got %d", tc.envValue, tc.expected, count)
		}
	}
}
