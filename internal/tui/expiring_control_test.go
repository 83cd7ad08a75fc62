package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/parley/internal/core/cancelwindow"
	"github.com/hay-kot/parley/internal/core/clock"
	"github.com/hay-kot/parley/internal/styles"
)

func TestExpiringControl_VisibleWhileOffered(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	c := NewExpiringControl("ctrl+z undo", true)

	assert.False(t, c.Visible())
	assert.Empty(t, c.View())

	w := cancelwindow.Open(fake, 5*time.Second, nil)
	c.Show(w)
	assert.True(t, c.Visible())
	assert.Equal(t, 5, c.Readout())
	assert.Contains(t, c.View(), "ctrl+z undo")

	fake.Advance(2 * time.Second)
	assert.Equal(t, 3, c.Readout())

	fake.Advance(3 * time.Second)
	assert.False(t, c.Visible(), "expiry hides silently")
	assert.Empty(t, c.View())
}

func TestExpiringControl_Activate(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	c := NewExpiringControl("undo", false)

	calls := 0
	action := func() bool {
		calls++
		return true
	}

	assert.False(t, c.Activate(action), "hidden control does nothing")
	assert.Zero(t, calls)

	c.Show(cancelwindow.Open(fake, time.Second, nil))
	assert.True(t, c.Activate(action))
	assert.Equal(t, 1, calls)
	assert.False(t, c.Visible())

	assert.False(t, c.Activate(action))
	assert.Equal(t, 1, calls)
}

func TestExpiringControl_DestructiveStyle(t *testing.T) {
	tests := []struct {
		name        string
		destructive bool
		want        lipgloss.TerminalColor
	}{
		{"destructive", true, styles.ColorRed},
		{"plain", false, styles.ColorYellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewExpiringControl("undo", tt.destructive)
			assert.Equal(t, tt.destructive, c.Destructive())
			assert.Equal(t, tt.want, c.labelStyle().GetForeground())
		})
	}
}
