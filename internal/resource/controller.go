package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for a deduplication run.
type Config struct {
	// MaxWorkers is the maximum number of concurrent bucket workers.
	// If 0 or negative, concurrency is unbounded.
	MaxWorkers int64

	// ComparisonsPerSec is the maximum comparison throughput across all
	// workers. If 0 or negative, unlimited.
	ComparisonsPerSec float64
}

// Controller manages global run resources (worker slots, comparison
// throughput). A nil Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	// Concurrency
	workerSem *semaphore.Weighted // nil if unbounded
	active    atomic.Int64

	// Throughput
	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxWorkers > 0 {
		c.workerSem = semaphore.NewWeighted(cfg.MaxWorkers)
	}

	if cfg.ComparisonsPerSec > 0 {
		burst := int(cfg.ComparisonsPerSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.ComparisonsPerSec), burst)
	}

	return c
}

// AcquireWorker reserves a worker slot, blocking while all slots are
// busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.workerSem != nil {
		if err := c.workerSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.active.Add(1)
	return nil
}

// TryAcquireWorker attempts to reserve a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if c.workerSem != nil && !c.workerSem.TryAcquire(1) {
		return false
	}
	c.active.Add(1)
	return true
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	if c.workerSem != nil {
		c.workerSem.Release(1)
	}
	c.active.Add(-1)
}

// ActiveWorkers returns the number of currently reserved worker slots.
func (c *Controller) ActiveWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// WorkerLimit returns the configured worker cap (0 if unbounded).
func (c *Controller) WorkerLimit() int64 {
	if c == nil || c.cfg.MaxWorkers < 0 {
		return 0
	}
	return c.cfg.MaxWorkers
}

// WaitComparisons blocks until the rate limit admits n comparisons.
// Requests larger than the limiter burst are admitted in burst-sized
// chunks.
func (c *Controller) WaitComparisons(ctx context.Context, n int64) error {
	if c == nil || c.limiter == nil || n <= 0 {
		return nil
	}

	burst := int64(c.limiter.Burst())
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := c.limiter.WaitN(ctx, int(chunk)); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
