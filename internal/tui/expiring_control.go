package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parley/internal/core/cancelwindow"
	"github.com/hay-kot/parley/internal/styles"
)

// ExpiringControl shows an offered cancel window as a draining progress bar
// with a seconds readout. It renders nothing unless a window is offered.
type ExpiringControl struct {
	label       string
	destructive bool
	window      *cancelwindow.Window
	bar         progress.Model
}

// NewExpiringControl creates a hidden control labelled with the key that
// activates it. A destructive control, one whose action discards something,
// is drawn in red.
func NewExpiringControl(label string, destructive bool) ExpiringControl {
	fill := styles.ColorYellow
	if destructive {
		fill = styles.ColorRed
	}
	bar := progress.New(
		progress.WithSolidFill(string(fill)),
		progress.WithoutPercentage(),
	)
	bar.Width = 20

	return ExpiringControl{label: label, destructive: destructive, bar: bar}
}

// Destructive reports whether the control's action discards something.
func (c *ExpiringControl) Destructive() bool {
	return c.destructive
}

func (c ExpiringControl) labelStyle() lipgloss.Style {
	if c.destructive {
		return controlDestructiveLabelStyle
	}
	return controlLabelStyle
}

// Show attaches the control to w.
func (c *ExpiringControl) Show(w *cancelwindow.Window) {
	c.window = w
}

// Hide detaches the control.
func (c *ExpiringControl) Hide() {
	c.window = nil
}

// Visible reports whether the attached window is still offered.
func (c *ExpiringControl) Visible() bool {
	return c.window != nil && c.window.Offered()
}

// Activate hides the control and runs action, which performs the
// cancellation. It does nothing when the control is not visible.
func (c *ExpiringControl) Activate(action func() bool) bool {
	if !c.Visible() {
		return false
	}
	c.Hide()
	return action()
}

// Readout returns the seconds left as displayed.
func (c *ExpiringControl) Readout() int {
	if c.window == nil {
		return 0
	}
	return c.window.Remaining()
}

// SetWidth sizes the bar to fit a row of the given width.
func (c *ExpiringControl) SetWidth(width int) {
	c.bar.Width = max(10, min(40, width/3))
}

// View renders the control, or "" when hidden.
func (c ExpiringControl) View() string {
	if !c.Visible() {
		return ""
	}

	remaining := 1 - float64(c.window.Progress())/100
	parts := []string{
		c.labelStyle().Render(c.label),
		c.bar.ViewAs(remaining),
		controlReadoutStyle.Render(fmt.Sprintf("%ds", c.Readout())),
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(parts, " "))
}
