// Package scrollsync coalesces scroll-to-target requests from several
// independent triggers into single, settled scroll commands.
//
// Every trigger rearms one pending timer. When the settle window passes with
// no further trigger, the most recent request is issued, provided it has a
// target.
package scrollsync

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/clock"
)

// DefaultSettle is how long the coordinator waits after the last trigger.
const DefaultSettle = 300 * time.Millisecond

// Anchor is the edge of the target kept visible.
type Anchor int

const (
	AnchorBottom Anchor = iota
	AnchorTop
	AnchorCenter
)

func (a Anchor) String() string {
	switch a {
	case AnchorBottom:
		return "bottom"
	case AnchorTop:
		return "top"
	case AnchorCenter:
		return "center"
	default:
		return "unknown"
	}
}

// ParseAnchor maps a config value to an Anchor.
func ParseAnchor(s string) (Anchor, bool) {
	switch s {
	case "bottom", "":
		return AnchorBottom, true
	case "top":
		return AnchorTop, true
	case "center":
		return AnchorCenter, true
	default:
		return AnchorBottom, false
	}
}

// Trigger names what caused a scroll request.
type Trigger int

const (
	TriggerMount Trigger = iota
	TriggerTarget
	TriggerContentHeight
	TriggerKeyboard
)

func (t Trigger) String() string {
	switch t {
	case TriggerMount:
		return "mount"
	case TriggerTarget:
		return "target"
	case TriggerContentHeight:
		return "content_height"
	case TriggerKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// Command is an issued scroll instruction.
type Command[T comparable] struct {
	Target      T
	Anchor      Anchor
	Trigger     Trigger
	RequestedAt time.Time
}

type request[T comparable] struct {
	cmd       Command[T]
	hasTarget bool
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	settle time.Duration
	anchor Anchor
	log    zerolog.Logger
}

// WithSettle overrides the settle window.
func WithSettle(d time.Duration) Option {
	return func(o *options) { o.settle = d }
}

// WithAnchor sets the anchor used for every command.
func WithAnchor(a Anchor) Option {
	return func(o *options) { o.anchor = a }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Coordinator debounces scroll requests for targets of type T.
type Coordinator[T comparable] struct {
	sched clock.Scheduler
	issue func(Command[T])
	opts  options

	mu        sync.Mutex
	stopped   bool
	target    T
	hasTarget bool
	height    int
	keyboard  bool
	latest    *request[T]
	timer     clock.Timer
	// gen identifies the armed timer so a stale callback that lost the race
	// with Stop is ignored.
	gen uint64
}

// New creates a Coordinator that calls issue with each settled command.
func New[T comparable](sched clock.Scheduler, issue func(Command[T]), opts ...Option) *Coordinator[T] {
	o := options{
		settle: DefaultSettle,
		anchor: AnchorBottom,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.settle < 0 {
		o.settle = 0
	}

	return &Coordinator[T]{
		sched: sched,
		issue: issue,
		opts:  o,
	}
}

// Mount records the initial target and always requests a scroll.
func (c *Coordinator[T]) Mount(target T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.target, c.hasTarget = target, ok
	c.requestLocked(TriggerMount)
}

// SetTarget requests a scroll when the target differs from the current one.
func (c *Coordinator[T]) SetTarget(target T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasTarget && c.target == target {
		return
	}
	c.target, c.hasTarget = target, true
	c.requestLocked(TriggerTarget)
}

// ClearTarget drops the target. A pending request settles with no target and
// issues nothing.
func (c *Coordinator[T]) ClearTarget() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasTarget {
		return
	}
	var zero T
	c.target, c.hasTarget = zero, false
	c.requestLocked(TriggerTarget)
}

// SetContentHeight requests a scroll when the tracked height changes.
func (c *Coordinator[T]) SetContentHeight(h int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h == c.height {
		return
	}
	c.height = h
	c.requestLocked(TriggerContentHeight)
}

// SetKeyboardVisible requests a scroll when keyboard visibility flips.
func (c *Coordinator[T]) SetKeyboardVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if visible == c.keyboard {
		return
	}
	c.keyboard = visible
	c.requestLocked(TriggerKeyboard)
}

// Stop discards any pending request. Later triggers are ignored.
func (c *Coordinator[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.latest = nil
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Pending reports whether a request is waiting for the settle window.
func (c *Coordinator[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest != nil
}

func (c *Coordinator[T]) requestLocked(trigger Trigger) {
	if c.stopped {
		return
	}

	c.latest = &request[T]{
		cmd: Command[T]{
			Target:      c.target,
			Anchor:      c.opts.anchor,
			Trigger:     trigger,
			RequestedAt: c.sched.Now(),
		},
		hasTarget: c.hasTarget,
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.sched.AfterFunc(c.opts.settle, func() { c.fire(gen) })

	c.opts.log.Debug().Stringer("trigger", trigger).Msg("scroll requested")
}

func (c *Coordinator[T]) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	req := c.latest
	c.latest = nil
	c.timer = nil
	stopped := c.stopped
	c.mu.Unlock()

	if req == nil || stopped {
		return
	}
	if !req.hasTarget {
		c.opts.log.Debug().Stringer("trigger", req.cmd.Trigger).Msg("scroll dropped, no target")
		return
	}

	c.opts.log.Debug().
		Stringer("trigger", req.cmd.Trigger).
		Stringer("anchor", req.cmd.Anchor).
		Msg("scroll issued")
	if c.issue != nil {
		c.issue(req.cmd)
	}
}
