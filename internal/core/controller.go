package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// CycleRunner is the controller's view of the poll cycle.
type CycleRunner interface {
	Run(ctx context.Context) CycleSummary
}

// Controller drives the polling loop: one background worker runs cycles
// on a fixed interval until stopped. Cycles never overlap, cycle errors
// never escape the loop, and the interval wait is cancellable so a stop
// request takes effect promptly.
type Controller struct {
	runner       CycleRunner
	pollInterval time.Duration
	cycleTimeout time.Duration
	logger       *zap.Logger

	mu     sync.Mutex
	state  atomic.Int32
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewController creates a new Controller in the Idle state.
func NewController(
	runner CycleRunner,
	pollInterval time.Duration,
	cycleTimeout time.Duration,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		runner:       runner,
		pollInterval: pollInterval,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

// State returns the current run state.
func (c *Controller) State() RunState {
	return RunState(c.state.Load())
}

// Start launches the polling worker. It is a no-op unless the controller
// is Idle, so at most one worker ever exists.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() != StateIdle {
		c.logger.Debug("start ignored, monitor already running")
		return
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.state.Store(int32(StateRunning))
	c.logger.Info("monitor started",
		zap.Duration("poll_interval", c.pollInterval))

	go c.loop(c.stopCh, c.doneCh)
}

// Stop asks the worker to finish and blocks until it reaches Idle. It is
// a no-op when the controller is Idle. The in-flight cycle's context is
// cancelled, so stop latency is bounded by one network operation, not by
// the poll interval.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.State() == StateIdle {
		c.mu.Unlock()
		return
	}
	if c.State() == StateRunning {
		c.state.Store(int32(StateStopping))
		c.logger.Info("monitor stopping")
		close(c.stopCh)
	}
	done := c.doneCh
	c.mu.Unlock()

	<-done
}

func (c *Controller) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer func() {
		c.state.Store(int32(StateIdle))
		c.logger.Info("monitor stopped")
		close(doneCh)
	}()

	for {
		// Stop may have been requested while the previous cycle ran.
		select {
		case <-stopCh:
			return
		default:
		}

		summary := c.runCycle(stopCh)
		if summary.Err != nil {
			c.logger.Error("poll cycle failed, retrying next interval",
				zap.Error(summary.Err),
				zap.Duration("retry_in", c.pollInterval))
		} else {
			c.logger.Info("poll cycle finished",
				zap.Int("found", summary.Found),
				zap.Int("processed", summary.Processed),
				zap.Int("linked", summary.Linked),
				zap.Int("skipped", summary.Skipped),
				zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)))
		}

		select {
		case <-stopCh:
			return
		case <-time.After(c.pollInterval):
		}
	}
}

// runCycle runs one cycle under a bounded context that is additionally
// cancelled when a stop is requested, so a hung network call cannot
// block shutdown.
func (c *Controller) runCycle(stopCh <-chan struct{}) CycleSummary {
	ctx, cancel := context.WithTimeout(context.Background(), c.cycleTimeout)
	defer cancel()

	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return c.runner.Run(ctx)
}
