// Package cancelwindow offers a caller-supplied action for a bounded time,
// after which the window silently closes.
package cancelwindow

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/clock"
	"github.com/hay-kot/parley/internal/core/countdown"
)

// displayOffset keeps the readout from showing 0 while the window still has a
// fraction of a second left, and shows the full duration at the start.
const displayOffset = 0.3

type options struct {
	onTick func(progress int)
	log    zerolog.Logger
}

// Option configures a Window.
type Option func(*options)

// WithTick registers a redraw callback invoked on every countdown tick.
func WithTick(fn func(progress int)) Option {
	return func(o *options) { o.onTick = fn }
}

// WithLogger sets the logger passed to the underlying countdown.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Window is a single-use cancellation window. A fresh Window is opened per
// pending action; there is no way to reopen one.
type Window struct {
	duration  time.Duration
	countdown *countdown.Countdown
}

// Open starts a window lasting d. onClosed runs if the window closes without
// being cancelled.
func Open(sched clock.Scheduler, d time.Duration, onClosed func(), opts ...Option) *Window {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Window{duration: d}
	w.countdown = countdown.Start(sched, d, onClosed,
		countdown.WithTick(o.onTick),
		countdown.WithLogger(o.log),
	)
	return w
}

// CancelNow cancels the window if it is still open, running onCancelled. It
// reports whether the cancellation took effect.
func (w *Window) CancelNow(onCancelled func()) bool {
	if !w.countdown.Cancel() {
		return false
	}
	if onCancelled != nil {
		onCancelled()
	}
	return true
}

// Close ends the window early as if it had run out, running onClosed.
func (w *Window) Close() bool {
	return w.countdown.Finish()
}

// Offered reports whether the window is still open.
func (w *Window) Offered() bool {
	return w.countdown.State() == countdown.StateRunning
}

// Cancelled reports whether the window ended through CancelNow.
func (w *Window) Cancelled() bool {
	return w.countdown.State() == countdown.StateCancelled
}

// Progress returns the elapsed fraction of the window in [0, 100].
func (w *Window) Progress() int {
	return w.countdown.Progress()
}

// Duration returns the configured window length.
func (w *Window) Duration() time.Duration {
	return w.duration
}

// Remaining returns the whole seconds shown in the countdown readout.
func (w *Window) Remaining() int {
	return Readout(w.duration, w.Progress())
}

// Readout computes the remaining-seconds display value for a window of
// duration d at the given progress.
func Readout(d time.Duration, progress int) int {
	if d <= 0 {
		return 0
	}
	left := d.Seconds() * (1 - float64(progress)/countdown.Steps)
	return int(left + displayOffset)
}
