package scheduler

import (
	"sync"
	"time"
)

// ClockDriver fires tick signals at a configured interval, independent of
// any rendering cadence. It holds no musical state — it only tells the
// scheduler "check the horizon again."
type ClockDriver interface {
	Start(intervalMS float64)
	Stop()
	Ticks() <-chan struct{}
}

// TickerClock is the default ClockDriver, backed by a time.Ticker running
// on its own goroutine. Ticks are posted to a buffered channel of size 1
// so that two ticks arriving before the scheduler services either one
// coalesce into a single pending tick, per spec.md §4.1/§5.
type TickerClock struct {
	mu     sync.Mutex
	ticker *time.Ticker
	stop   chan struct{}
	ticks  chan struct{}
}

// NewTickerClock creates a clock that has not yet been started.
func NewTickerClock() *TickerClock {
	return &TickerClock{
		ticks: make(chan struct{}, 1),
	}
}

// Ticks returns the channel tick notifications arrive on.
func (c *TickerClock) Ticks() <-chan struct{} {
	return c.ticks
}

// Start begins firing ticks every intervalMS milliseconds. Calling Start
// while already running restarts the ticker at the new interval.
func (c *TickerClock) Start(intervalMS float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ticker != nil {
		c.stopLocked()
	}

	interval := time.Duration(intervalMS * float64(time.Millisecond))
	if interval <= 0 {
		interval = time.Millisecond
	}
	c.ticker = time.NewTicker(interval)
	c.stop = make(chan struct{})

	ticker := c.ticker
	stop := c.stop
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case c.ticks <- struct{}{}:
				default:
					// a tick is already pending; the next Collect pass
					// will drain the horizon in one go (§4.1 coalescing)
				}
			}
		}
	}()
}

// Stop ceases firing ticks. It is safe to call when already stopped.
func (c *TickerClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *TickerClock) stopLocked() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.stop)
	c.ticker = nil
	c.stop = nil
}

// ClockIntervalMS derives the tick period from the schedule-ahead
// horizon: roughly four ticks fit inside one horizon, so the horizon is
// always refilled before it can drain (spec.md §4.1).
func ClockIntervalMS(scheduleAheadTime float64) float64 {
	return scheduleAheadTime * 1000 / 4
}
