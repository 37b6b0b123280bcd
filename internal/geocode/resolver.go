// Package geocode resolves raw coordinates into a human-readable location via
// the Nominatim reverse-geocoding API, with bounding-box short-circuiting,
// bounded retry on rate limiting, and degradation to a coordinate string.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/config"
	"io.winapps.missingpersonalert/internal/observability"
)

// OutsideRegion is returned for coordinates outside the serviced country's
// bounding rectangle, without calling the external service.
const OutsideRegion = "Coordinates outside Germany"

// Interior display-name segments containing one of these are treated as the
// administrative region (Bundesland) of the place.
var regionKeywords = []string{"Land", "Bayern", "Berlin", "Hamburg"}

var errRateLimited = errors.New("geocoder rate limited")

// nameSource yields the raw comma-separated display name for a coordinate.
// The production source is the Nominatim client, optionally wrapped by the
// LRU cache.
type nameSource interface {
	displayName(ctx context.Context, lat, lon float64) (string, error)
}

// Resolver converts (latitude, longitude) into a display string. Every path
// returns a usable string or "": errors never propagate to the caller.
type Resolver struct {
	source      nameSource
	bounds      config.BoundingBox
	maxAttempts int
	backoffBase time.Duration
	logger      *zap.SugaredLogger
	metrics     *observability.Metrics
}

// NewResolver creates a resolver against the configured Nominatim endpoint,
// with an LRU cache over the network lookup when GeocodeCacheSize is positive.
func NewResolver(cfg *config.Config, logger *zap.SugaredLogger, metrics *observability.Metrics) *Resolver {
	var source nameSource = &client{
		baseURL:   cfg.GeocodeBaseURL,
		userAgent: cfg.GeocodeUserAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if cfg.GeocodeCacheSize > 0 {
		source = newCachedSource(source, cfg.GeocodeCacheSize, metrics)
	}

	return &Resolver{
		source:      source,
		bounds:      cfg.GeocodeBounds,
		maxAttempts: cfg.GeocodeMaxAttempts,
		backoffBase: cfg.GeocodeBackoffBase,
		logger:      logger,
		metrics:     metrics,
	}
}

// Resolve returns a display string for the coordinate, or "" when either
// coordinate is absent. Out-of-region coordinates short-circuit to
// OutsideRegion; any lookup failure degrades to a "Lat: ..., Lon: ..." string.
func (r *Resolver) Resolve(ctx context.Context, lat, lon *float64) string {
	if lat == nil || lon == nil {
		return ""
	}

	if !r.bounds.Contains(*lat, *lon) {
		r.metrics.GeocodeRequests.WithLabelValues("skipped").Inc()
		r.logger.Warnw("coordinates outside serviced region", "lat", *lat, "lon", *lon)
		return OutsideRegion
	}

	name, err := r.lookupWithRetry(ctx, *lat, *lon)
	if err != nil {
		outcome := "error"
		if errors.Is(err, errRateLimited) {
			outcome = "rate_limited"
		}
		r.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
		r.logger.Errorw("failed to resolve location name", "lat", *lat, "lon", *lon, "error", err)
		return coordinateFallback(*lat, *lon)
	}

	r.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	if name == "" {
		r.logger.Warnw("no display name in geocoder response", "lat", *lat, "lon", *lon)
		return coordinateFallback(*lat, *lon)
	}
	return formatDisplayName(name)
}

// lookupWithRetry retries only rate-limited lookups, waiting backoffBase
// before the first retry and doubling after each attempt. Any other error is
// permanent. The total number of attempts is bounded by maxAttempts.
func (r *Resolver) lookupWithRetry(ctx context.Context, lat, lon float64) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.backoffBase
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxAttempts-1)), ctx)

	return backoff.RetryWithData(func() (string, error) {
		name, err := r.source.displayName(ctx, lat, lon)
		if err != nil && !errors.Is(err, errRateLimited) {
			return "", backoff.Permanent(err)
		}
		return name, err
	}, policy)
}

// formatDisplayName reduces the comma-separated display name to
// "city, region, country", "city, country", or the name verbatim when it has
// a single segment. The region is the first interior segment carrying a known
// state keyword.
func formatDisplayName(name string) string {
	parts := strings.Split(name, ", ")
	if len(parts) < 2 {
		return name
	}

	city := parts[0]
	country := parts[len(parts)-1]

	for _, part := range parts[1 : len(parts)-1] {
		for _, keyword := range regionKeywords {
			if strings.Contains(part, keyword) {
				return fmt.Sprintf("%s, %s, %s", city, part, country)
			}
		}
	}

	return fmt.Sprintf("%s, %s", city, country)
}

func coordinateFallback(lat, lon float64) string {
	return fmt.Sprintf("Lat: %f, Lon: %f", lat, lon)
}

// client is the Nominatim HTTP source. Requests carry the contact-bearing
// User-Agent the provider's usage policy requires.
type client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
}

func (c *client) displayName(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"format":         {"json"},
		"lat":            {fmt.Sprintf("%f", lat)},
		"lon":            {fmt.Sprintf("%f", lon)},
		"zoom":           {"10"},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var decoded nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}

	return decoded.DisplayName, nil
}
