// Package countdown drives a bounded 0-100 progress value over a duration and
// signals expiry exactly once.
package countdown

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/clock"
)

// Steps is the number of ticks a countdown is divided into. Progress reaches
// Steps at expiry.
const Steps = 100

// State is the lifecycle state of a countdown.
type State int

const (
	StateRunning State = iota
	StateExpired
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithTick registers a callback invoked after every progress increment,
// including the final one.
func WithTick(fn func(progress int)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

// WithLogger sets the logger used for tick and settle events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Countdown) { c.log = l }
}

// Countdown is a handle to a running countdown. Exactly one of expire or
// cancel takes effect; whichever settles first wins.
type Countdown struct {
	sched    clock.Scheduler
	interval time.Duration
	onExpire func()
	onTick   func(progress int)
	log      zerolog.Logger

	mu       sync.Mutex
	state    State
	progress int
	next     clock.Timer
}

// Start begins a countdown of duration d. onExpire runs once when progress
// reaches Steps. A non-positive duration expires immediately, before Start
// returns, without ticking.
func Start(sched clock.Scheduler, d time.Duration, onExpire func(), opts ...Option) *Countdown {
	c := &Countdown{
		sched:    sched,
		interval: d / Steps,
		onExpire: onExpire,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if d <= 0 {
		c.settle(StateExpired)
		return c
	}

	c.mu.Lock()
	c.next = sched.AfterFunc(c.interval, c.tick)
	c.mu.Unlock()

	c.log.Debug().Dur("duration", d).Dur("interval", c.interval).Msg("countdown started")
	return c
}

// Progress returns the current progress in [0, Steps].
func (c *Countdown) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// State returns the current lifecycle state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cancel stops the countdown. It reports whether this call settled it; after
// expiry or a previous cancel it is a no-op and returns false.
func (c *Countdown) Cancel() bool {
	return c.settle(StateCancelled)
}

// Finish expires a running countdown now, firing onExpire. It returns false if
// the countdown had already settled.
func (c *Countdown) Finish() bool {
	return c.settle(StateExpired)
}

// settle performs the one-shot transition out of StateRunning. The pending
// tick, if any, is released.
func (c *Countdown) settle(to State) bool {
	c.mu.Lock()
	if !c.settleLocked(to) {
		c.mu.Unlock()
		return false
	}
	progress := c.progress
	c.mu.Unlock()

	c.settled(to, progress)
	return true
}

// settleLocked transitions to a terminal state. The caller must hold c.mu.
func (c *Countdown) settleLocked(to State) bool {
	if c.state != StateRunning {
		return false
	}
	c.state = to
	if to == StateExpired {
		c.progress = Steps
	}
	if c.next != nil {
		c.next.Stop()
		c.next = nil
	}
	return true
}

// settled runs after a terminal transition, outside the lock.
func (c *Countdown) settled(to State, progress int) {
	c.log.Debug().Stringer("state", to).Int("progress", progress).Msg("countdown settled")

	if to == StateExpired && c.onExpire != nil {
		c.onExpire()
	}
}

func (c *Countdown) tick() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}

	c.progress++
	progress := c.progress
	c.next = nil

	expired := progress >= Steps
	if expired {
		c.settleLocked(StateExpired)
	} else {
		c.next = c.sched.AfterFunc(c.interval, c.tick)
	}
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(progress)
	}
	if expired {
		c.settled(StateExpired, progress)
	}
}
