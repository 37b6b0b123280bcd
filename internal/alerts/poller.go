package alerts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/observability"
)

// Poller maintains the single current alert snapshot. Each Poll fetches the
// configured feed, parses it, and atomically replaces the snapshot. Any
// failure, transport or parse, keeps the previous snapshot unchanged; a bad
// poll never blanks out previously known alerts.
type Poller struct {
	feedURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	metrics    *observability.Metrics

	current atomic.Pointer[[]Alert]
}

// NewPoller creates a poller whose snapshot starts empty, not absent: readers
// before the first successful poll get an empty slice.
func NewPoller(feedURL string, logger *zap.SugaredLogger, metrics *observability.Metrics) *Poller {
	p := &Poller{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:  logger,
		metrics: metrics,
	}
	empty := []Alert{}
	p.current.Store(&empty)
	return p
}

// Current returns the latest complete snapshot. The returned slice is shared
// and must not be mutated.
func (p *Poller) Current() []Alert {
	return *p.current.Load()
}

// Poll performs one fetch-parse-swap cycle. Errors are logged and absorbed so
// a failed tick never affects the schedule of the next one.
func (p *Poller) Poll(ctx context.Context) {
	fetched, err := p.fetch(ctx)
	if err != nil {
		p.metrics.FeedPolls.WithLabelValues("fetch_error").Inc()
		p.logger.Errorw("failed to fetch CAP feed, keeping previous alerts", "url", p.feedURL, "error", err)
		return
	}

	parsed, err := ParseFeed(fetched)
	fetched.Close()
	if err != nil {
		p.metrics.FeedPolls.WithLabelValues("parse_error").Inc()
		p.logger.Errorw("failed to parse CAP feed, keeping previous alerts", "url", p.feedURL, "error", err)
		return
	}

	p.current.Store(&parsed)
	p.metrics.FeedPolls.WithLabelValues("success").Inc()
	p.metrics.AlertsCurrent.Set(float64(len(parsed)))
	p.logger.Infow("fetched emergency alerts", "count", len(parsed))
}

func (p *Poller) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}
