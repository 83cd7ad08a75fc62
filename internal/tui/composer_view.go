package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ComposerView is the bordered editor under the message list. It owns the
// textarea only; draft state lives in composer.Composer.
type ComposerView struct {
	input textarea.Model
}

// NewComposerView creates an editor showing height rows.
func NewComposerView(placeholder string, height int) ComposerView {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j"))
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.SetHeight(height)

	return ComposerView{input: ta}
}

// Update routes a message to the textarea.
func (v *ComposerView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

// Value returns the editor text.
func (v *ComposerView) Value() string {
	return v.input.Value()
}

// SetValue replaces the editor text, moving the cursor to the end.
func (v *ComposerView) SetValue(s string) {
	if s == v.input.Value() {
		return
	}
	v.input.SetValue(s)
	v.input.CursorEnd()
}

// Focus focuses the editor.
func (v *ComposerView) Focus() tea.Cmd {
	return v.input.Focus()
}

// Blur removes focus.
func (v *ComposerView) Blur() {
	v.input.Blur()
}

// Focused reports whether the editor has focus.
func (v *ComposerView) Focused() bool {
	return v.input.Focused()
}

// SetHeight sets the visible rows.
func (v *ComposerView) SetHeight(h int) {
	v.input.SetHeight(h)
}

// Height returns the visible rows.
func (v *ComposerView) Height() int {
	return v.input.Height()
}

// SetWidth sets the outer width including the border.
func (v *ComposerView) SetWidth(w int) {
	v.input.SetWidth(max(10, w-2))
}

// ContentHeight returns the rows the text needs once soft-wrapped.
func (v *ComposerView) ContentHeight() int {
	return wrappedLines(v.input.Value(), v.input.Width())
}

// View renders the bordered editor.
func (v ComposerView) View() string {
	style := composerBlurredStyle
	if v.input.Focused() {
		style = composerFocusedStyle
	}
	return style.Render(v.input.View())
}

// wrappedLines counts the display rows of s at the given width.
func wrappedLines(s string, width int) int {
	if width <= 0 {
		return strings.Count(s, "\n") + 1
	}

	rows := 0
	for _, line := range strings.Split(s, "\n") {
		w := lipgloss.Width(line)
		rows += max(1, (w+width-1)/width)
	}
	return rows
}
