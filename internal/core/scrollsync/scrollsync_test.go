package scrollsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/clock"
)

var epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type issued struct {
	cmd Command[string]
	at  time.Time
}

func newCoordinator(t *testing.T, opts ...Option) (*Coordinator[string], *clock.Fake, *[]issued) {
	t.Helper()

	fake := clock.NewFake(epoch)
	var out []issued
	c := New(fake, func(cmd Command[string]) {
		out = append(out, issued{cmd: cmd, at: fake.Now()})
	}, opts...)
	return c, fake, &out
}

func TestCoordinator_CoalescesHeightChanges(t *testing.T) {
	c, fake, out := newCoordinator(t)
	c.SetTarget("m1")
	fake.Advance(time.Second)
	*out = nil

	start := fake.Now()

	c.SetContentHeight(10)
	fake.Advance(100 * time.Millisecond)
	c.SetTarget("m2")
	c.SetContentHeight(11)
	fake.Advance(150 * time.Millisecond)
	c.SetTarget("m3")
	c.SetContentHeight(12)

	fake.Advance(299 * time.Millisecond)
	assert.Empty(t, *out, "nothing before the settle window passes")

	fake.Advance(time.Millisecond)
	require.Len(t, *out, 1)

	got := (*out)[0]
	assert.Equal(t, "m3", got.cmd.Target)
	assert.Equal(t, AnchorBottom, got.cmd.Anchor)
	assert.Equal(t, TriggerContentHeight, got.cmd.Trigger)
	assert.Equal(t, start.Add(250*time.Millisecond), got.cmd.RequestedAt)
	assert.Equal(t, start.Add(550*time.Millisecond), got.at)

	fake.Advance(time.Second)
	assert.Len(t, *out, 1)
	assert.Zero(t, fake.Pending())
}

func TestCoordinator_MountAlwaysTriggers(t *testing.T) {
	c, fake, out := newCoordinator(t)

	c.Mount("m1", true)
	fake.Advance(DefaultSettle)

	require.Len(t, *out, 1)
	assert.Equal(t, TriggerMount, (*out)[0].cmd.Trigger)
	assert.Equal(t, "m1", (*out)[0].cmd.Target)
}

func TestCoordinator_AbsentTargetIssuesNothing(t *testing.T) {
	c, fake, out := newCoordinator(t)

	c.Mount("", false)
	c.SetContentHeight(5)
	c.SetKeyboardVisible(true)
	fake.Advance(time.Second)

	assert.Empty(t, *out)
	assert.False(t, c.Pending())
}

func TestCoordinator_ClearTargetDropsPending(t *testing.T) {
	c, fake, out := newCoordinator(t)

	c.SetTarget("m1")
	fake.Advance(100 * time.Millisecond)
	c.ClearTarget()
	fake.Advance(time.Second)

	assert.Empty(t, *out)
}

func TestCoordinator_OnlyChangesTrigger(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(c *Coordinator[string])
		act     func(c *Coordinator[string])
		want    int
	}{
		{
			name:    "same target",
			prepare: func(c *Coordinator[string]) { c.SetTarget("m1") },
			act:     func(c *Coordinator[string]) { c.SetTarget("m1") },
			want:    0,
		},
		{
			name: "same height",
			prepare: func(c *Coordinator[string]) {
				c.SetTarget("m1")
				c.SetContentHeight(4)
			},
			act:  func(c *Coordinator[string]) { c.SetContentHeight(4) },
			want: 0,
		},
		{
			name: "same keyboard visibility",
			prepare: func(c *Coordinator[string]) {
				c.SetTarget("m1")
				c.SetKeyboardVisible(true)
			},
			act:  func(c *Coordinator[string]) { c.SetKeyboardVisible(true) },
			want: 0,
		},
		{
			name: "keyboard hides",
			prepare: func(c *Coordinator[string]) {
				c.SetTarget("m1")
				c.SetKeyboardVisible(true)
			},
			act:  func(c *Coordinator[string]) { c.SetKeyboardVisible(false) },
			want: 1,
		},
		{
			name:    "remount with same target",
			prepare: func(c *Coordinator[string]) { c.Mount("m1", true) },
			act:     func(c *Coordinator[string]) { c.Mount("m1", true) },
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake, out := newCoordinator(t)
			tt.prepare(c)
			fake.Advance(time.Second)
			*out = nil

			tt.act(c)
			fake.Advance(time.Second)

			assert.Len(t, *out, tt.want)
		})
	}
}

func TestCoordinator_SeparatedTriggersIssueSeparately(t *testing.T) {
	c, fake, out := newCoordinator(t, WithSettle(100*time.Millisecond), WithAnchor(AnchorTop))

	c.SetTarget("m1")
	fake.Advance(200 * time.Millisecond)
	c.SetTarget("m2")
	fake.Advance(200 * time.Millisecond)

	require.Len(t, *out, 2)
	assert.Equal(t, "m1", (*out)[0].cmd.Target)
	assert.Equal(t, "m2", (*out)[1].cmd.Target)
	assert.Equal(t, AnchorTop, (*out)[1].cmd.Anchor)
}

func TestCoordinator_Stop(t *testing.T) {
	c, fake, out := newCoordinator(t)

	c.SetTarget("m1")
	c.Stop()
	c.SetTarget("m2")
	fake.Advance(time.Second)

	assert.Empty(t, *out)
	assert.Zero(t, fake.Pending())
}

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in   string
		want Anchor
		ok   bool
	}{
		{"", AnchorBottom, true},
		{"bottom", AnchorBottom, true},
		{"top", AnchorTop, true},
		{"center", AnchorCenter, true},
		{"left", AnchorBottom, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAnchor(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
