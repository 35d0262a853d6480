package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Location mirrors the coordinate payload the server expects.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Seed cities for captain starting positions.
var cities = []Location{
	{Lat: 51.5074, Lng: -0.1278}, // London
	{Lat: 48.8566, Lng: 2.3522},  // Paris
	{Lat: 41.0082, Lng: 28.9784}, // Istanbul
	{Lat: 25.2048, Lng: 55.2708}, // Dubai
	{Lat: 19.0760, Lng: 72.8777}, // Mumbai
	{Lat: 1.3521, Lng: 103.8198}, // Singapore
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

type captain struct {
	ID    string
	Token string
	Pos   Location
}

func registerCaptain(apiURL string, n int) (*captain, error) {
	classes := []string{"standard", "moto", "auto"}
	body := map[string]interface{}{
		"fullname": map[string]string{
			"firstname": fmt.Sprintf("Sim%d", n),
			"lastname":  "Captain",
		},
		"email":    fmt.Sprintf("sim.captain.%d.%d@example.com", n, time.Now().UnixNano()),
		"password": "simulator-pass-123",
		"vehicle": map[string]interface{}{
			"color":    "white",
			"plate":    fmt.Sprintf("SIM-%04d", rand.Intn(10000)),
			"capacity": 1 + rand.Intn(4),
			"class":    classes[rand.Intn(len(classes))],
		},
	}

	data, _ := json.Marshal(body)
	resp, err := http.Post(apiURL+"/api/auth/captain/register", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("register failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode register response: %w", err)
	}

	return &captain{
		ID:    result.User.ID,
		Token: result.Token,
		Pos:   jitterLocation(cities[rand.Intn(len(cities))], 1000),
	}, nil
}

func setAvailable(apiURL string, c *captain) error {
	data, _ := json.Marshal(map[string]bool{"available": true})
	req, err := http.NewRequest(http.MethodPost, apiURL+"/api/captains/availability", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("availability failed with status %d", resp.StatusCode)
	}
	return nil
}

func runCaptain(wsURL string, c *captain, interval time.Duration) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.WithError(err).WithField("captain", c.ID).Error("Websocket dial failed")
		return
	}
	defer conn.Close()

	send := func(event string, data interface{}) error {
		raw, _ := json.Marshal(data)
		return conn.WriteJSON(map[string]interface{}{
			"event": event,
			"data":  json.RawMessage(raw),
		})
	}

	if err := send("join", map[string]string{"user_id": c.ID, "role": "captain"}); err != nil {
		log.WithError(err).WithField("captain", c.ID).Error("Join failed")
		return
	}

	// Drain inbound ride offers so the connection stays healthy.
	go func() {
		for {
			var event struct {
				Event string `json:"event"`
			}
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			log.WithFields(log.Fields{"captain": c.ID, "event": event.Event}).Info("Received event")
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		c.Pos = jitterLocation(c.Pos, 200)
		err := send("update-location", map[string]interface{}{
			"user_id":  c.ID,
			"location": c.Pos,
		})
		if err != nil {
			log.WithError(err).WithField("captain", c.ID).Warn("Location update failed")
			return
		}
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	wsURL := os.Getenv("WS_URL")
	if wsURL == "" {
		wsURL = "ws://localhost:8080/ws"
	}
	count := 5
	if v := os.Getenv("CAPTAIN_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	for i := 0; i < count; i++ {
		c, err := registerCaptain(apiURL, i)
		if err != nil {
			log.WithError(err).Error("Failed to register captain")
			continue
		}
		if err := setAvailable(apiURL, c); err != nil {
			log.WithError(err).WithField("captain", c.ID).Error("Failed to set availability")
			continue
		}
		log.WithField("captain", c.ID).Info("Captain online")
		go runCaptain(wsURL, c, 5*time.Second)
	}

	select {}
}
