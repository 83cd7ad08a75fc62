// Package composer implements the message composer: a draft editor that
// dispatches optimistically on submit and then offers a bounded window in
// which the send can be cancelled.
//
// A Composer is not safe for concurrent use. All calls, and the callbacks of
// the scheduler it is given, must be delivered on one event loop (see
// clock.Loop and the TUI scheduler).
package composer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/cancelwindow"
	"github.com/hay-kot/parley/internal/core/clock"
)

// Default editor height bounds.
const (
	DefaultMinHeight = 38
	DefaultMaxHeight = 280
)

// Options configures a Composer.
type Options struct {
	// CancelDelay is how long a submission stays cancellable.
	CancelDelay time.Duration

	MinHeight int
	MaxHeight int

	// OnSend dispatches a submission. It is called synchronously by Submit.
	OnSend func(text string)
	// OnCancel rolls back the most recent submission.
	OnCancel func()
	// OnChange is called after every state transition.
	OnChange func(State)
	// OnHeightChange is called when the clamped editor height changes.
	OnHeightChange func(height int)
	// OnTick is called on every countdown tick of the offered window.
	OnTick func(progress int)

	Logger *zerolog.Logger
}

// pending is one submission and its window.
type pending struct {
	text   string
	window *cancelwindow.Window
}

// Composer couples draft editing, optimistic submit and cancel windows.
type Composer struct {
	sched  clock.Scheduler
	opts   Options
	log    zerolog.Logger
	state  State
	height int

	// current is the submission behind the Sending state, if any.
	current *pending
	// background holds windows of earlier submissions that are still open
	// but no longer offered.
	background map[*pending]struct{}
}

// New creates an idle Composer.
func New(sched clock.Scheduler, opts Options) *Composer {
	if opts.MinHeight <= 0 {
		opts.MinHeight = DefaultMinHeight
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.MaxHeight < opts.MinHeight {
		opts.MaxHeight = opts.MinHeight
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Composer{
		sched:      sched,
		opts:       opts,
		log:        log,
		state:      Idle{},
		height:     opts.MinHeight,
		background: make(map[*pending]struct{}),
	}
}

// State returns the current state.
func (c *Composer) State() State {
	return c.state
}

// Draft returns the current draft text.
func (c *Composer) Draft() string {
	return c.state.Draft()
}

// Offered returns the window of the most recent submission while it can still
// be cancelled, or nil.
func (c *Composer) Offered() *cancelwindow.Window {
	if s, ok := c.state.(Sending); ok {
		return s.Window
	}
	return nil
}

// Pending returns the number of submissions whose windows are still open,
// offered or not.
func (c *Composer) Pending() int {
	n := len(c.background)
	if _, ok := c.state.(Sending); ok {
		n++
	}
	return n
}

// Height returns the clamped editor height.
func (c *Composer) Height() int {
	return c.height
}

// Edit replaces the draft. Editing while a send is offered starts a new draft
// and leaves the offered window running.
func (c *Composer) Edit(text string) {
	switch s := c.state.(type) {
	case Idle, Editing:
		if text == s.Draft() {
			return
		}
		c.setState(draftState(text))
	case Sending:
		if text == s.Text {
			return
		}
		s.Text = text
		c.setState(s)
	}
}

// Submit dispatches the draft. It returns false, doing nothing, when the
// draft is empty. Otherwise it calls OnSend with the draft, clears it and
// opens a new cancel window. A window opened by an earlier submission keeps
// running to its own end but is no longer offered.
func (c *Composer) Submit() bool {
	text := c.state.Draft()
	if text == "" {
		c.log.Debug().Msg("empty submit ignored")
		return false
	}

	if c.opts.OnSend != nil {
		c.opts.OnSend(text)
	}

	switch c.state.(type) {
	case Sending:
		if c.current != nil && c.current.window.Offered() {
			c.background[c.current] = struct{}{}
		}
		c.current = nil
		c.setState(Idle{})
	case Idle, Editing:
		c.setState(Idle{})
	}

	p := &pending{text: text}
	p.window = cancelwindow.Open(c.sched, c.opts.CancelDelay, func() { c.closed(p) },
		cancelwindow.WithTick(c.opts.OnTick),
		cancelwindow.WithLogger(c.log),
	)

	c.log.Debug().Int("length", len(text)).Dur("cancel_delay", c.opts.CancelDelay).Msg("message submitted")

	if !p.window.Offered() {
		// Zero delay: the window closed while opening, so the send is
		// already committed.
		return true
	}

	c.current = p
	c.setState(Sending{Submitted: text, Window: p.window})
	return true
}

// Cancel cancels the offered submission, calls OnCancel and restores the
// submitted text as the draft. It returns false when nothing is offered.
func (c *Composer) Cancel() bool {
	s, ok := c.state.(Sending)
	if !ok {
		return false
	}

	if !s.Window.CancelNow(c.opts.OnCancel) {
		return false
	}

	c.log.Debug().Int("length", len(s.Submitted)).Msg("message cancelled")
	c.current = nil
	c.setState(Editing{Text: s.Submitted})
	return true
}

// SetContentHeight clamps h to the configured bounds and records it, calling
// OnHeightChange when the clamped value changes. It returns the clamped value.
func (c *Composer) SetContentHeight(h int) int {
	h = max(c.opts.MinHeight, min(h, c.opts.MaxHeight))
	if h == c.height {
		return h
	}
	c.height = h
	if c.opts.OnHeightChange != nil {
		c.opts.OnHeightChange(h)
	}
	return h
}

// Close ends every open window early so the pending submissions commit.
func (c *Composer) Close() {
	if s, ok := c.state.(Sending); ok {
		s.Window.Close()
	}
	for p := range c.background {
		p.window.Close()
	}
}

// closed runs when a submission's window closes without being cancelled.
func (c *Composer) closed(p *pending) {
	delete(c.background, p)

	c.log.Debug().Int("length", len(p.text)).Msg("message committed")

	if s, ok := c.state.(Sending); ok && c.current == p {
		c.current = nil
		c.setState(draftState(s.Text))
	}
}

func (c *Composer) setState(s State) {
	c.state = s
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}
