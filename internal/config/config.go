package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// BoundingBox is the fixed latitude/longitude rectangle of the serviced
// country. Coordinates outside it are rejected before any geocoding call.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate falls inside the rectangle.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	ListenAddr string

	FeedURL      string
	PollInterval time.Duration

	SweepSchedule string

	UploadDir      string
	ReportLifetime time.Duration

	AlertTopic string

	GeocodeBaseURL     string
	GeocodeUserAgent   string
	GeocodeMaxAttempts int
	GeocodeBackoffBase time.Duration
	GeocodeCacheSize   int
	GeocodeBounds      BoundingBox
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	pollInterval, err := parseDuration("FEED_POLL_INTERVAL", "300s")
	if err != nil {
		return nil, err
	}

	lifetime, err := parseDuration("REPORT_LIFETIME", "720h") // 30 days
	if err != nil {
		return nil, err
	}

	backoffBase, err := parseDuration("GEOCODE_BACKOFF_BASE", "1000ms")
	if err != nil {
		return nil, err
	}

	bounds, err := parseBounds()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:         getEnvOrDefault("LISTEN_ADDR", ":9091"),
		FeedURL:            getEnvOrDefault("FEED_URL", "https://warnung.bund.de/bbk.dwd/unwetter.xml"),
		PollInterval:       pollInterval,
		SweepSchedule:      getEnvOrDefault("SWEEP_SCHEDULE", "0 0 * * *"),
		UploadDir:          getEnvOrDefault("UPLOAD_DIR", "uploads"),
		ReportLifetime:     lifetime,
		AlertTopic:         getEnvOrDefault("ALERT_TOPIC", "Germany_Alerts"),
		GeocodeBaseURL:     getEnvOrDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org/reverse"),
		GeocodeUserAgent:   getEnvOrDefault("GEOCODE_USER_AGENT", "MissingPersonAlertSystem/1.0 (contact: ops@winapps.io)"),
		GeocodeMaxAttempts: parsePositiveInt("GEOCODE_MAX_ATTEMPTS", 2),
		GeocodeBackoffBase: backoffBase,
		GeocodeCacheSize:   parsePositiveInt("GEOCODE_CACHE_SIZE", 1000),
		GeocodeBounds:      bounds,
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("FEED_POLL_INTERVAL must be positive")
	}
	if cfg.ReportLifetime <= 0 {
		return nil, errors.New("REPORT_LIFETIME must be positive")
	}
	if cfg.GeocodeMaxAttempts < 1 {
		return nil, errors.New("GEOCODE_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func parseBounds() (BoundingBox, error) {
	// Defaults approximate Germany's extent. The rectangle is deliberately
	// loose: points inside it but outside the actual border still geocode.
	b := BoundingBox{MinLat: 47.3, MaxLat: 55.1, MinLon: 5.9, MaxLon: 15.0}

	var err error
	if b.MinLat, err = parseFloat("GEOCODE_MIN_LAT", b.MinLat); err != nil {
		return b, err
	}
	if b.MaxLat, err = parseFloat("GEOCODE_MAX_LAT", b.MaxLat); err != nil {
		return b, err
	}
	if b.MinLon, err = parseFloat("GEOCODE_MIN_LON", b.MinLon); err != nil {
		return b, err
	}
	if b.MaxLon, err = parseFloat("GEOCODE_MAX_LON", b.MaxLon); err != nil {
		return b, err
	}

	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return b, errors.New("geocode bounding box is inverted")
	}
	return b, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := getEnvOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// getEnvOrDefault returns the environment variable value or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
