package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/config"
	"io.winapps.missingpersonalert/internal/observability"
)

func coord(v float64) *float64 {
	return &v
}

func testResolver(baseURL string, maxAttempts int, backoffBase time.Duration) *Resolver {
	return &Resolver{
		source: &client{
			baseURL:    baseURL,
			userAgent:  "test-agent (contact: test@example.com)",
			httpClient: &http.Client{Timeout: 5 * time.Second},
		},
		bounds:      config.BoundingBox{MinLat: 47.3, MaxLat: 55.1, MinLon: 5.9, MaxLon: 15.0},
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		logger:      zap.NewNop().Sugar(),
		metrics:     observability.NewMetricsForTesting(),
	}
}

func displayNameServer(t *testing.T, name string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "10", r.URL.Query().Get("zoom"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "test-agent (contact: test@example.com)", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewEncoder(w).Encode(nominatimResponse{DisplayName: name}))
	}))
}

func TestResolve_MissingCoordinatesReturnEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := displayNameServer(t, "Berlin, Deutschland", &calls)
	defer srv.Close()
	r := testResolver(srv.URL, 2, time.Millisecond)

	assert.Empty(t, r.Resolve(context.Background(), nil, coord(13.41)))
	assert.Empty(t, r.Resolve(context.Background(), coord(52.52), nil))
	assert.Empty(t, r.Resolve(context.Background(), nil, nil))
	assert.Equal(t, int32(0), calls.Load())
}

func TestResolve_OutsideBoundingBoxSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := displayNameServer(t, "Oslo, Norge", &calls)
	defer srv.Close()
	r := testResolver(srv.URL, 2, time.Millisecond)

	got := r.Resolve(context.Background(), coord(60.0), coord(10.0))

	assert.Equal(t, OutsideRegion, got)
	assert.Equal(t, int32(0), calls.Load())
}

func TestResolve_CityAndCountryWithoutRegion(t *testing.T) {
	var calls atomic.Int32
	srv := displayNameServer(t, "Berlin, 10117, Deutschland", &calls)
	defer srv.Close()
	r := testResolver(srv.URL, 2, time.Millisecond)

	got := r.Resolve(context.Background(), coord(52.52), coord(13.41))

	assert.Equal(t, "Berlin, Deutschland", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolve_RegionKeywordIncluded(t *testing.T) {
	var calls atomic.Int32
	srv := displayNameServer(t, "München, Bayern, Deutschland", &calls)
	defer srv.Close()
	r := testResolver(srv.URL, 2, time.Millisecond)

	got := r.Resolve(context.Background(), coord(48.14), coord(11.58))

	assert.Equal(t, "München, Bayern, Deutschland", got)
}

func TestResolve_SingleSegmentVerbatim(t *testing.T) {
	var calls atomic.Int32
	srv := displayNameServer(t, "Deutschland", &calls)
	defer srv.Close()
	r := testResolver(srv.URL, 2, time.Millisecond)

	got := r.Resolve(context.Background(), coord(51.0), coord(10.0))

	assert.Equal(t, "Deutschland", got)
}

func TestResolve_EmptyDisplayNameFallsBack(t *testing.T) {
	var calls atomic.Int32
	srv := displayNameServer(t, "", &calls)
	defer srv.Close()
	r := testResolver(srv.URL, 2, time.Millisecond)

	got := r.Resolve(context.Background(), coord(52.52), coord(13.41))

	assert.Equal(t, "Lat: 52.520000, Lon: 13.410000", got)
}

func TestResolve_RateLimitedTwiceFallsBack(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	backoffBase := 60 * time.Millisecond
	r := testResolver(srv.URL, 2, backoffBase)

	start := time.Now()
	got := r.Resolve(context.Background(), coord(52.52), coord(13.41))
	elapsed := time.Since(start)

	assert.Equal(t, "Lat: 52.520000, Lon: 13.410000", got)
	assert.Equal(t, int32(2), calls.Load(), "exactly 2 attempts total")
	assert.GreaterOrEqual(t, elapsed, backoffBase, "second attempt delayed by at least the backoff base")
}

func TestResolve_RateLimitThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(nominatimResponse{DisplayName: "Hamburg, Deutschland"})
	}))
	defer srv.Close()

	r := testResolver(srv.URL, 2, time.Millisecond)
	got := r.Resolve(context.Background(), coord(53.55), coord(9.99))

	assert.Equal(t, "Hamburg, Deutschland", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolve_ServerErrorFallsBackWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := testResolver(srv.URL, 2, time.Minute)
	got := r.Resolve(context.Background(), coord(52.52), coord(13.41))

	assert.Equal(t, "Lat: 52.520000, Lon: 13.410000", got)
	assert.Equal(t, int32(1), calls.Load(), "non-429 errors are not retried")
}

func TestResolve_UnreachableGeocoderFallsBack(t *testing.T) {
	r := testResolver("http://127.0.0.1:1", 2, time.Millisecond)

	got := r.Resolve(context.Background(), coord(52.52), coord(13.41))

	assert.Equal(t, "Lat: 52.520000, Lon: 13.410000", got)
}

func TestFormatDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"region keyword in interior", "Garching, Landkreis München, Deutschland", "Garching, Landkreis München, Deutschland"},
		{"no region keyword", "Berlin, 10117, Deutschland", "Berlin, Deutschland"},
		{"two segments", "Bremen, Deutschland", "Bremen, Deutschland"},
		{"single segment", "Deutschland", "Deutschland"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, formatDisplayName(tc.input))
		})
	}
}
