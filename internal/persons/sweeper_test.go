package persons

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/observability"
)

func testSweeper(store Store, now time.Time) *Sweeper {
	sw := NewSweeper(store, zap.NewNop().Sugar(), observability.NewMetricsForTesting())
	sw.SetClock(clockwork.NewFakeClockAt(now))
	return sw
}

func TestSweep_DeletesOnlyExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.persons["expired"] = Person{ID: "expired", ExpiresAt: now.Add(-time.Hour)}
	store.persons["active"] = Person{ID: "active", ExpiresAt: now.Add(time.Hour)}

	testSweeper(store, now).Sweep(context.Background())

	_, err := store.FindByID(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByID(context.Background(), "active")
	assert.NoError(t, err)
}

func TestSweep_AllFutureIsNoOp(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.persons["a"] = Person{ID: "a", ExpiresAt: now.Add(time.Hour)}
	store.persons["b"] = Person{ID: "b", ExpiresAt: now.Add(48 * time.Hour)}

	testSweeper(store, now).Sweep(context.Background())

	assert.Len(t, store.persons, 2)
}

func TestSweep_EmptyStoreIsNoOp(t *testing.T) {
	store := newFakeStore()

	testSweeper(store, time.Now()).Sweep(context.Background())

	assert.Empty(t, store.persons)
}

func TestSweep_StoreErrorIsAbsorbed(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("database gone")

	// Must not panic or propagate; the next scheduled run handles recovery.
	testSweeper(store, time.Now()).Sweep(context.Background())
}

func TestSweep_ExactExpiryIsRetained(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.persons["edge"] = Person{ID: "edge", ExpiresAt: now}

	testSweeper(store, now).Sweep(context.Background())

	// Only strictly-before-now expiries are purged.
	assert.Len(t, store.persons, 1)
}
