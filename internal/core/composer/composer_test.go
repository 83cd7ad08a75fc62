package composer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/clock"
)

// recorder collects composer callbacks.
type recorder struct {
	sent      []string
	cancelled int
	heights   []int
}

func newComposer(t *testing.T, delay time.Duration) (*Composer, *clock.Fake, *recorder) {
	t.Helper()

	fake := clock.NewFake(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	rec := &recorder{}
	c := New(fake, Options{
		CancelDelay:    delay,
		MinHeight:      1,
		MaxHeight:      6,
		OnSend:         func(text string) { rec.sent = append(rec.sent, text) },
		OnCancel:       func() { rec.cancelled++ },
		OnHeightChange: func(h int) { rec.heights = append(rec.heights, h) },
	})
	return c, fake, rec
}

func TestComposer_SubmitThenCancel(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	c.Edit("hello")
	assert.Equal(t, Editing{Text: "hello"}, c.State())

	require.True(t, c.Submit())
	assert.Equal(t, []string{"hello"}, rec.sent, "send is dispatched synchronously")
	assert.Equal(t, "", c.Draft())

	s, ok := c.State().(Sending)
	require.True(t, ok)
	assert.Equal(t, "hello", s.Submitted)
	require.NotNil(t, c.Offered())

	fake.Advance(2 * time.Second)
	require.True(t, c.Cancel())

	assert.Equal(t, 1, rec.cancelled)
	assert.Equal(t, Editing{Text: "hello"}, c.State())
	assert.Nil(t, c.Offered())
	assert.Equal(t, []string{"hello"}, rec.sent, "cancel does not resend")

	fake.Advance(10 * time.Second)
	assert.Equal(t, 1, rec.cancelled)
	assert.Equal(t, Editing{Text: "hello"}, c.State())
	assert.Zero(t, fake.Pending())
}

func TestComposer_SubmitCommitsAfterDelay(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	c.Edit("hello")
	require.True(t, c.Submit())

	fake.Advance(4900 * time.Millisecond)
	require.NotNil(t, c.Offered())

	fake.Advance(100 * time.Millisecond)
	assert.Nil(t, c.Offered(), "cancel no longer offered")
	assert.Equal(t, Idle{}, c.State())
	assert.Zero(t, rec.cancelled)

	assert.False(t, c.Cancel())
	assert.Zero(t, rec.cancelled)
	assert.Zero(t, c.Pending())
}

func TestComposer_EmptySubmitIsNoop(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	assert.False(t, c.Submit())
	assert.Empty(t, rec.sent)
	assert.Equal(t, Idle{}, c.State())
	assert.Zero(t, fake.Pending())

	c.Edit("x")
	c.Edit("")
	assert.False(t, c.Submit())
	assert.Equal(t, Idle{}, c.State())
}

func TestComposer_CancelWhenNotSendingIsNoop(t *testing.T) {
	c, _, rec := newComposer(t, 5*time.Second)

	assert.False(t, c.Cancel())
	c.Edit("draft")
	assert.False(t, c.Cancel())

	assert.Zero(t, rec.cancelled)
	assert.Equal(t, Editing{Text: "draft"}, c.State())
}

func TestComposer_EditWhileSendingStartsNewDraft(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	c.Edit("first")
	require.True(t, c.Submit())
	w := c.Offered()

	fake.Advance(time.Second)
	c.Edit("second")

	s, ok := c.State().(Sending)
	require.True(t, ok)
	assert.Equal(t, "first", s.Submitted)
	assert.Equal(t, "second", s.Text)
	assert.Same(t, w, c.Offered(), "offered window unaffected")

	fake.Advance(4 * time.Second)
	assert.Equal(t, Editing{Text: "second"}, c.State(), "new draft survives the commit")
	assert.Zero(t, rec.cancelled)
}

func TestComposer_SecondSubmitLeavesFirstWindowRunning(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	c.Edit("first")
	require.True(t, c.Submit())
	first := c.Offered()

	fake.Advance(2 * time.Second)
	c.Edit("second")
	require.True(t, c.Submit())
	second := c.Offered()

	assert.NotSame(t, first, second)
	assert.True(t, first.Offered(), "first window still open in the background")
	assert.Equal(t, 2, c.Pending())
	assert.Equal(t, []string{"first", "second"}, rec.sent)

	// First window runs out; the second is still offered.
	fake.Advance(3 * time.Second)
	assert.False(t, first.Offered())
	assert.False(t, first.Cancelled())
	assert.Same(t, second, c.Offered())
	assert.Equal(t, 1, c.Pending())

	// Cancelling targets the newest submission only.
	require.True(t, c.Cancel())
	assert.Equal(t, 1, rec.cancelled)
	assert.Equal(t, Editing{Text: "second"}, c.State())
	assert.Zero(t, c.Pending())
}

func TestComposer_CancelNewestLeavesBackgroundCommitting(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	c.Edit("first")
	require.True(t, c.Submit())
	first := c.Offered()
	c.Edit("second")
	require.True(t, c.Submit())

	require.True(t, c.Cancel())
	assert.Equal(t, 1, c.Pending())

	fake.Advance(5 * time.Second)
	assert.False(t, first.Cancelled())
	assert.Zero(t, c.Pending())
	assert.Equal(t, 1, rec.cancelled)
	assert.Equal(t, Editing{Text: "second"}, c.State())
}

func TestComposer_ZeroDelayCommitsImmediately(t *testing.T) {
	c, fake, rec := newComposer(t, 0)

	c.Edit("now")
	require.True(t, c.Submit())

	assert.Equal(t, []string{"now"}, rec.sent)
	assert.Equal(t, Idle{}, c.State())
	assert.Nil(t, c.Offered())
	assert.False(t, c.Cancel())
	assert.Zero(t, fake.Pending())
}

func TestComposer_Close(t *testing.T) {
	c, fake, rec := newComposer(t, 5*time.Second)

	c.Edit("first")
	c.Submit()
	c.Edit("second")
	c.Submit()
	c.Edit("draft")

	c.Close()

	assert.Zero(t, c.Pending())
	assert.Zero(t, fake.Pending(), "no ticks left behind")
	assert.Zero(t, rec.cancelled)
	assert.Equal(t, Editing{Text: "draft"}, c.State())
}

func TestComposer_OnChangeSeesTransitions(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))

	var states []string
	c := New(fake, Options{
		CancelDelay: time.Second,
		OnChange: func(s State) {
			switch s.(type) {
			case Idle:
				states = append(states, "idle")
			case Editing:
				states = append(states, "editing")
			case Sending:
				states = append(states, "sending")
			}
		},
	})

	c.Edit("hi")
	c.Submit()
	fake.Advance(time.Second)

	assert.Equal(t, []string{"editing", "idle", "sending", "idle"}, states)
}

func TestComposer_SetContentHeight(t *testing.T) {
	c, _, rec := newComposer(t, time.Second)

	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"below min clamps", 0, 1},
		{"within range", 3, 3},
		{"same value", 3, 3},
		{"above max clamps", 20, 6},
		{"still above max", 40, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.SetContentHeight(tt.input))
			assert.Equal(t, tt.want, c.Height())
		})
	}

	assert.Equal(t, []int{3, 6}, rec.heights, "only changes are reported")
}

func TestComposer_DefaultHeights(t *testing.T) {
	c := New(clock.NewFake(time.Time{}), Options{})

	assert.Equal(t, DefaultMinHeight, c.Height())
	assert.Equal(t, DefaultMaxHeight, c.SetContentHeight(1000))
}
