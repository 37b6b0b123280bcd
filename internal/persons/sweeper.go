package persons

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/observability"
)

// Sweeper purges reports whose expiry has passed. It runs on a fixed schedule
// and carries no retry logic: a failed sweep simply waits for the next run.
type Sweeper struct {
	store   Store
	clock   clockwork.Clock
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
}

// NewSweeper creates a sweeper over the given store.
func NewSweeper(store Store, logger *zap.SugaredLogger, metrics *observability.Metrics) *Sweeper {
	return &Sweeper{
		store:   store,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
}

// SetClock swaps the time source for tests.
func (sw *Sweeper) SetClock(c clockwork.Clock) {
	sw.clock = c
}

// Sweep deletes every expired report in one batched operation. Deleting zero
// rows is a valid no-op. Errors are logged and absorbed.
func (sw *Sweeper) Sweep(ctx context.Context) {
	deleted, err := sw.store.DeleteExpired(ctx, sw.clock.Now())
	if err != nil {
		sw.metrics.SweepRuns.WithLabelValues("error").Inc()
		sw.logger.Errorw("expiry sweep failed", "error", err)
		return
	}

	sw.metrics.SweepRuns.WithLabelValues("success").Inc()
	sw.metrics.SweepDeleted.Add(float64(deleted))
	sw.logger.Infow("deleted expired records", "count", deleted)
}
