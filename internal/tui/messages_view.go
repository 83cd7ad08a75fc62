package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/scrollsync"
	"github.com/hay-kot/parley/internal/styles"
)

// span is the line range a message occupies in the rendered content.
type span struct {
	start int
	end   int
}

// MessagesView renders a board's messages into a scrollable viewport. Bodies
// are rendered as markdown with glamour when enabled.
type MessagesView struct {
	viewport viewport.Model
	user     string
	markdown bool
	style    string
	log      zerolog.Logger

	renderer *glamour.TermRenderer
	width    int
	bodies   map[string]string // message id -> rendered body
	spans    map[string]span
}

// NewMessagesView creates a view. user marks the viewer's own messages.
func NewMessagesView(user string, markdown bool, style string, log zerolog.Logger) *MessagesView {
	return &MessagesView{
		viewport: viewport.New(0, 0),
		user:     user,
		markdown: markdown,
		style:    style,
		log:      log,
		bodies:   make(map[string]string),
		spans:    make(map[string]span),
	}
}

// SetSize sets the viewport dimensions. A width change drops rendered bodies.
func (v *MessagesView) SetSize(width, height int) {
	v.viewport.Height = max(1, height)
	if width == v.width {
		return
	}

	v.width = width
	v.viewport.Width = width
	clear(v.bodies)
	v.renderer = nil

	if v.markdown && width > 0 {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(v.style),
			glamour.WithWordWrap(max(20, width-4)),
		)
		if err != nil {
			v.log.Warn().Err(err).Str("style", v.style).Msg("markdown renderer unavailable")
			return
		}
		v.renderer = r
	}
}

// SetMessages renders msgs, oldest first. spin is drawn next to messages that
// are still in flight.
func (v *MessagesView) SetMessages(msgs []chat.Message, spin string) {
	clear(v.spans)

	if len(msgs) == 0 {
		v.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left,
			styles.BannerStyle.Render(styles.Banner),
			"",
			emptyStyle.Render("No messages yet. Say hello!"),
		))
		return
	}

	var (
		b    strings.Builder
		line int
	)
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}

		block := v.header(m, spin) + "\n" + v.body(m)
		n := strings.Count(block, "\n") + 1

		v.spans[m.ID] = span{start: line, end: line + n - 1}
		b.WriteString(block)
		line += n - 1
	}

	v.viewport.SetContent(b.String())
}

// ScrollTo positions the viewport so the message id sits at anchor. It
// reports false when the message is not rendered.
func (v *MessagesView) ScrollTo(id string, anchor scrollsync.Anchor) bool {
	s, ok := v.spans[id]
	if !ok {
		return false
	}

	h := v.viewport.Height
	var y int
	switch anchor {
	case scrollsync.AnchorTop:
		y = s.start
	case scrollsync.AnchorCenter:
		y = (s.start+s.end)/2 - h/2
	default:
		y = s.end - h + 1
	}
	v.viewport.SetYOffset(max(0, y))
	return true
}

// Update handles viewport scrolling keys and mouse events.
func (v *MessagesView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// LineUp scrolls up by n lines.
func (v *MessagesView) LineUp(n int) {
	v.viewport.LineUp(n)
}

// LineDown scrolls down by n lines.
func (v *MessagesView) LineDown(n int) {
	v.viewport.LineDown(n)
}

// AtBottom reports whether the last line is visible.
func (v *MessagesView) AtBottom() bool {
	return v.viewport.AtBottom()
}

// View renders the viewport.
func (v *MessagesView) View() string {
	return v.viewport.View()
}

func (v *MessagesView) header(m chat.Message, spin string) string {
	author := authorStyle
	if m.User == v.user {
		author = ownAuthorStyle
	}

	parts := []string{" " + author.Render(m.User)}
	if m.InFlight() {
		parts = append(parts, spinnerStyle.Render(spin), inFlightStyle.Render("sending"))
	} else {
		parts = append(parts, timestampStyle.Render(m.CreationDate.Local().Format("Jan 2 15:04")))
	}
	return strings.Join(parts, " ")
}

func (v *MessagesView) body(m chat.Message) string {
	if out, ok := v.bodies[m.ID]; ok {
		return out
	}

	out := v.renderBody(m.Text)
	v.bodies[m.ID] = out
	return out
}

func (v *MessagesView) renderBody(text string) string {
	if v.renderer != nil {
		out, err := v.renderer.Render(text)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		v.log.Debug().Err(err).Msg("markdown render failed, using plain text")
	}

	return lipgloss.NewStyle().
		PaddingLeft(2).
		Width(max(10, v.width-2)).
		Render(text)
}
