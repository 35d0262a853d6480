package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/models"
)

var (
	ErrAddressNotFound = errors.New("no coordinates found for the address")
	ErrRouteNotFound   = errors.New("no route found between the locations")
)

// RouteInfo is the driving route summary between two coordinates.
type RouteInfo struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Suggestion is one address autocomplete candidate.
type Suggestion struct {
	Description string `json:"description"`
}

// Oracle is the geocoding and routing interface the dispatch core consumes.
type Oracle interface {
	ResolveAddress(ctx context.Context, address string) (models.Coordinate, error)
	Route(ctx context.Context, origin, destination models.Coordinate) (RouteInfo, error)
	Suggest(ctx context.Context, input string) ([]Suggestion, error)
}

// Client talks to a LocationIQ-compatible geocoding service.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a geocoding client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ResolveAddress converts a string address into a coordinate.
func (c *Client) ResolveAddress(ctx context.Context, address string) (models.Coordinate, error) {
	endpoint := fmt.Sprintf("%s/search.php?key=%s&q=%s&format=json&limit=1",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(address))

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return models.Coordinate{}, err
	}
	if len(results) == 0 {
		return models.Coordinate{}, ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}
	return models.Coordinate{Lat: lat, Lng: lng}, nil
}

// Route returns the driving distance and duration between two coordinates.
// The directions endpoint takes lng,lat pairs.
func (c *Client) Route(ctx context.Context, origin, destination models.Coordinate) (RouteInfo, error) {
	endpoint := fmt.Sprintf("%s/directions/driving/%f,%f;%f,%f?key=%s&overview=false",
		c.BaseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat,
		url.QueryEscape(c.APIKey))

	var result struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return RouteInfo{}, err
	}
	if result.Code != "Ok" || len(result.Routes) == 0 {
		return RouteInfo{}, ErrRouteNotFound
	}

	return RouteInfo{
		DistanceMeters:  result.Routes[0].Distance,
		DurationSeconds: result.Routes[0].Duration,
	}, nil
}

// Suggest returns autocomplete candidates for a partial address. Failures
// are logged and reported as an empty list, matching the forgiving behavior
// expected from a typeahead endpoint.
func (c *Client) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	if len(input) < 2 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/autocomplete.php?key=%s&q=%s",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(input))

	var results []struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		log.WithError(err).Warn("Autocomplete lookup failed")
		return nil, nil
	}

	suggestions := make([]Suggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, Suggestion{Description: r.DisplayName})
	}
	return suggestions, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("geocoder status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
