// Package resource provides optional limits for concurrent matrix jobs
// and snapshot IO throughput.
package resource

import (
	"context"
	"io"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentJobs is the maximum number of matrix computations
	// running at the same time. If 0, defaults to 1.
	MaxConcurrentJobs int64

	// IOLimitBytesPerSec is the maximum throughput for snapshot reads
	// and writes. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources across matrix jobs.
type Controller struct {
	cfg Config

	jobSem     *semaphore.Weighted
	activeJobs atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}

	c := &Controller{
		cfg:    cfg,
		jobSem: semaphore.NewWeighted(cfg.MaxConcurrentJobs),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireJob reserves a job slot, blocking until one is available or ctx
// is canceled. A nil controller imposes no limit.
func (c *Controller) AcquireJob(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.jobSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.activeJobs.Add(1)
	return nil
}

// TryAcquireJob reserves a job slot without blocking.
func (c *Controller) TryAcquireJob() bool {
	if c == nil {
		return true
	}
	if !c.jobSem.TryAcquire(1) {
		return false
	}
	c.activeJobs.Add(1)
	return true
}

// ReleaseJob releases a job slot.
func (c *Controller) ReleaseJob() {
	if c == nil {
		return
	}
	c.activeJobs.Add(-1)
	c.jobSem.Release(1)
}

// ActiveJobs returns the number of jobs currently holding a slot.
func (c *Controller) ActiveJobs() int64 {
	if c == nil {
		return 0
	}
	return c.activeJobs.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// rate.Limiter rejects single waits larger than its burst.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// ThrottledWriter wraps w so that writes respect the controller's IO
// limit. A nil controller or unlimited config returns w unchanged.
func (c *Controller) ThrottledWriter(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &throttledWriter{ctx: ctx, c: c, w: w}
}

type throttledWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (tw *throttledWriter) Write(p []byte) (int, error) {
	if err := tw.c.AcquireIO(tw.ctx, len(p)); err != nil {
		return 0, err
	}
	return tw.w.Write(p)
}
