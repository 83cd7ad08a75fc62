package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/parley/internal/core/clock"
)

// timerFiredMsg carries a scheduled callback into the program loop.
type timerFiredMsg struct {
	timer *schedTimer
}

// Scheduler is a clock.Scheduler whose callbacks run inside Update. Expired
// timers are queued on a channel that Listen drains one message at a time, so
// the model must re-arm Listen after handling each timerFiredMsg.
type Scheduler struct {
	fired chan timerFiredMsg
	done  chan struct{}
	once  sync.Once
}

// NewScheduler creates a scheduler. Call Close when the program exits.
func NewScheduler() *Scheduler {
	return &Scheduler{
		fired: make(chan timerFiredMsg, 64),
		done:  make(chan struct{}),
	}
}

func (s *Scheduler) Now() time.Time { return time.Now() }

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) clock.Timer {
	t := &schedTimer{fn: fn}
	t.timer = time.AfterFunc(d, func() {
		select {
		case s.fired <- timerFiredMsg{timer: t}:
		case <-s.done:
		}
	})
	return t
}

// Listen waits for the next expired timer.
func (s *Scheduler) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.fired:
			return msg
		case <-s.done:
			return nil
		}
	}
}

// Close releases any goroutine blocked on delivery.
func (s *Scheduler) Close() {
	s.once.Do(func() { close(s.done) })
}

// schedTimer drops a callback that was already queued when Stop was called.
type schedTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	fn      func()
	stopped bool
	fired   bool
}

func (t *schedTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// run invokes the callback unless the timer was stopped first.
func (t *schedTimer) run() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()

	t.fn()
}
