package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshSnapshot(context.Context) error {
	r.calls.Add(1)
	return r.err
}

type countingEvicter struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (e *countingEvicter) EvictIdle(maxIdle time.Duration) int {
	e.calls.Add(1)
	e.maxIdle.Store(int64(maxIdle))
	return 1
}

func TestStockSweepWorker_RunEvictsEvenWhenRefreshFails(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("db down")}
	evicter := &countingEvicter{}
	w := NewStockSweepWorker(refresher, evicter, time.Minute, 2*time.Hour)

	w.run(context.Background())

	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.Equal(t, int32(1), evicter.calls.Load())
	assert.Equal(t, int64(2*time.Hour), evicter.maxIdle.Load())
}

func TestStockSweepWorker_StartTicksUntilCanceled(t *testing.T) {
	refresher := &countingRefresher{}
	evicter := &countingEvicter{}
	w := NewStockSweepWorker(refresher, evicter, 5*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStockSweepWorker_ZeroIntervalReturns(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewStockSweepWorker(refresher, &countingEvicter{}, 0, time.Hour)

	w.Start(context.Background())
	assert.Zero(t, refresher.calls.Load())
}
