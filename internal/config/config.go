package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all tunable parameters for the dispatch server. Values are
// loaded from environment variables with defaults that let the binary run
// locally without setup.
type Config struct {
	HTTPAddr string

	MongoURI string
	MongoDB  string

	JWTSecret string
	JWTExpiry time.Duration

	GeocoderBaseURL string
	GeocoderAPIKey  string

	SearchRadiusMeters float64

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment.
func Load() Config {
	cfg := Config{
		HTTPAddr:           ":8080",
		MongoURI:           "mongodb://localhost:27017",
		MongoDB:            "ride_dispatch",
		JWTSecret:          "default-secret-key-change-in-production",
		JWTExpiry:          24 * time.Hour,
		GeocoderBaseURL:    "https://us1.locationiq.com/v1",
		SearchRadiusMeters: 10000,
		KafkaTopic:         "ride-lifecycle",
		LogLevel:           "info",
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDB, "MONGO_DB")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setDuration(&cfg.JWTExpiry, "JWT_EXPIRY")
	setString(&cfg.GeocoderBaseURL, "GEOCODER_BASE_URL")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	setFloat(&cfg.SearchRadiusMeters, "SEARCH_RADIUS_M")
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setString(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	cfg.LogFile = os.Getenv("LOG_FILE")

	return cfg
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func setDuration(target *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}

func setFloat(target *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
