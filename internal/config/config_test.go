package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9091", cfg.ListenAddr)
	assert.Equal(t, 300*time.Second, cfg.PollInterval)
	assert.Equal(t, "0 0 * * *", cfg.SweepSchedule)
	assert.Equal(t, 30*24*time.Hour, cfg.ReportLifetime)
	assert.Equal(t, "Germany_Alerts", cfg.AlertTopic)
	assert.Equal(t, 2, cfg.GeocodeMaxAttempts)
	assert.Equal(t, time.Second, cfg.GeocodeBackoffBase)
	assert.Equal(t, BoundingBox{MinLat: 47.3, MaxLat: 55.1, MinLon: 5.9, MaxLon: 15.0}, cfg.GeocodeBounds)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FEED_POLL_INTERVAL", "30s")
	t.Setenv("REPORT_LIFETIME", "24h")
	t.Setenv("GEOCODE_MAX_ATTEMPTS", "3")
	t.Setenv("GEOCODE_BACKOFF_BASE", "50ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 24*time.Hour, cfg.ReportLifetime)
	assert.Equal(t, 3, cfg.GeocodeMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.GeocodeBackoffBase)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("FEED_POLL_INTERVAL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvertedBounds(t *testing.T) {
	t.Setenv("GEOCODE_MIN_LAT", "60.0")
	t.Setenv("GEOCODE_MAX_LAT", "50.0")

	_, err := Load()
	assert.Error(t, err)
}

func TestBoundingBox_Contains(t *testing.T) {
	b := BoundingBox{MinLat: 47.3, MaxLat: 55.1, MinLon: 5.9, MaxLon: 15.0}

	assert.True(t, b.Contains(52.52, 13.41))
	assert.True(t, b.Contains(47.3, 5.9))
	assert.False(t, b.Contains(60.0, 10.0))
	assert.False(t, b.Contains(50.0, 20.0))
}
