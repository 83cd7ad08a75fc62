package clock

import (
	"context"
	"sync"
	"time"
)

// Loop is a single-goroutine event loop. Work posted with Post and callbacks
// scheduled with AfterFunc run one at a time on the goroutine that called Run,
// so state owned by the loop needs no further locking.
type Loop struct {
	work chan func()
	done chan struct{}
	once sync.Once
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		work: make(chan func(), 64),
		done: make(chan struct{}),
	}
}

// Run processes work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.work:
			fn()
		}
	}
}

// Post queues fn to run on the loop. It returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	case l.work <- fn:
		return true
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fire() {
				fn()
			}
		})
	})
	return t
}

// loopTimer guards against a callback that was already queued on the loop
// running after Stop.
type loopTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

func (t *loopTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}
	t.fired = true
	return true
}
