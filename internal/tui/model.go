package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/clock"
	"github.com/hay-kot/parley/internal/core/composer"
	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/core/record"
	"github.com/hay-kot/parley/internal/core/scrollsync"
	"github.com/hay-kot/parley/internal/parley"
	"github.com/hay-kot/parley/internal/styles"
)

// Rows taken by everything but the message list and the editor: header (2),
// cancel control (1), editor border (2) and help (1).
const chromeHeight = 6

// Options configures the TUI behavior.
type Options struct {
	// Scheduler drives the composer and scroll timers. When nil, timers are
	// delivered through the program loop.
	Scheduler clock.Scheduler
	// WatchPath is the records file to watch for changes from other
	// processes. Empty disables watching.
	WatchPath string
	Logger    zerolog.Logger
}

// messagesLoadedMsg is sent when the board's messages are read.
type messagesLoadedMsg struct {
	messages []chat.Message
	err      error
}

// boardLoadedMsg is sent when the board summary is read.
type boardLoadedMsg struct {
	board chat.Board
	err   error
}

// messageSavedMsg is sent when an optimistic save completes.
type messageSavedMsg struct {
	id      string
	message chat.Message
	err     error
}

// messageRetractedMsg is sent when a cancelled message is deleted.
type messageRetractedMsg struct {
	id  string
	err error
}

// Model is the Bubble Tea model for a board's chat screen.
type Model struct {
	service *parley.Service
	cfg     *config.Config
	board   chat.Board
	log     zerolog.Logger

	keys KeyMap
	help help.Model

	sched   clock.Scheduler
	loop    *Scheduler // set when timers run through the program loop
	watcher *StoreWatcher

	composer *composer.Composer
	editor   ComposerView
	control  ExpiringControl
	messages *MessagesView
	spinner  spinner.Model
	scroll   *scrollsync.Coordinator[string]
	timeline *timeline

	mounted    bool
	lastSent   string
	retracting int
	width      int
	height     int
	err        error
	quitting   bool

	// queued collects commands produced by composer callbacks during Update.
	queued []tea.Cmd
}

// New creates the chat model for board.
func New(service *parley.Service, cfg *config.Config, board chat.Board, opts Options) *Model {
	m := &Model{
		service:  service,
		cfg:      cfg,
		board:    board,
		log:      opts.Logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		sched:    opts.Scheduler,
		timeline: newTimeline(),
	}

	if m.sched == nil {
		m.loop = NewScheduler()
		m.sched = m.loop
	}

	if opts.WatchPath != "" {
		w, err := WatchStore(opts.WatchPath, m.log)
		if err != nil {
			m.log.Warn().Err(err).Msg("store changes from other processes will not be shown")
		} else {
			m.watcher = w
		}
	}

	m.help.Styles.ShortKey = helpStyle
	m.help.Styles.ShortDesc = helpStyle
	m.help.Styles.ShortSeparator = helpStyle
	m.help.ShortSeparator = " • "

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.MiniDot
	m.spinner.Style = spinnerStyle

	m.control = NewExpiringControl("ctrl+z undo", true)
	m.messages = NewMessagesView(service.User(), cfg.Render.Markdown, cfg.Render.Style, m.log)
	m.editor = NewComposerView("Message "+board.Name, cfg.Composer.MinHeight)

	logger := m.log.With().Str("component", "composer").Logger()
	m.composer = composer.New(m.sched, composer.Options{
		CancelDelay:    cfg.Composer.CancelDelay,
		MinHeight:      cfg.Composer.MinHeight,
		MaxHeight:      cfg.Composer.MaxHeight,
		OnSend:         m.onSend,
		OnCancel:       m.onCancel,
		OnChange:       m.onComposerChange,
		OnHeightChange: m.onHeightChange,
		Logger:         &logger,
	})

	anchor, _ := scrollsync.ParseAnchor(cfg.Scroll.Anchor)
	m.scroll = scrollsync.New(m.sched, m.onScroll,
		scrollsync.WithSettle(cfg.Scroll.Settle),
		scrollsync.WithAnchor(anchor),
		scrollsync.WithLogger(m.log.With().Str("component", "scroll").Logger()),
	)

	m.editor.Focus()
	return m
}

// Init starts loading and the background listeners.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadMessages(),
		m.loadBoard(),
		m.spinner.Tick,
		m.editor.Focus(),
	}
	if m.loop != nil {
		cmds = append(cmds, m.loop.Listen())
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Listen())
	}
	return tea.Batch(cmds...)
}

// Close releases the scheduler and watcher. Pending sends are committed.
func (m *Model) Close() {
	m.composer.Close()
	m.scroll.Stop()
	if m.loop != nil {
		m.loop.Close()
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

// Commands run on their own goroutines, so they capture what they need from
// the model up front instead of reading it later.

func (m *Model) loadMessages() tea.Cmd {
	svc, boardID := m.service, m.board.ID
	return func() tea.Msg {
		msgs, err := svc.ListMessages(context.Background(), boardID, parley.ListMessagesOptions{
			Ascending: true,
		})
		return messagesLoadedMsg{messages: msgs, err: err}
	}
}

func (m *Model) loadBoard() tea.Cmd {
	svc, boardID := m.service, m.board.ID
	return func() tea.Msg {
		b, err := svc.GetBoard(context.Background(), boardID)
		return boardLoadedMsg{board: b, err: err}
	}
}

func (m *Model) saveMessage(msg chat.Message) tea.Cmd {
	svc, boardID := m.service, m.board.ID
	return func() tea.Msg {
		saved, err := svc.PostMessage(context.Background(), boardID, msg)
		return messageSavedMsg{id: msg.ID, message: saved, err: err}
	}
}

func (m *Model) retractMessage(id string) tea.Cmd {
	m.retracting++
	svc := m.service
	return func() tea.Msg {
		err := svc.RetractMessage(context.Background(), id)
		return messageRetractedMsg{id: id, err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case timerFiredMsg:
		msg.timer.run()
		if m.loop != nil {
			cmd = m.loop.Listen()
		}

	case storeChangedMsg:
		cmds := []tea.Cmd{m.loadMessages(), m.loadBoard()}
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.Listen())
		}
		cmd = tea.Batch(cmds...)

	case messagesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.timeline.Reload(msg.messages)
		m.refresh()

	case boardLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, parley.ErrBoardNotFound) {
				m.err = msg.err
			}
			break
		}
		m.board = msg.board

	case messageSavedMsg:
		m.handleSaved(msg)

	case messageRetractedMsg:
		m.retracting--
		m.timeline.Retracted(msg.id)
		if msg.err != nil && !errors.Is(msg.err, record.ErrNotFound) {
			m.err = msg.err
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.timeline.InFlight() {
			m.refresh()
		}

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		cmd = m.messages.Update(msg)

	default:
		if m.editor.Focused() {
			cmd = m.editor.Update(msg)
		}
	}

	cmds := append(m.queued, cmd)
	m.queued = nil

	if m.quitting && m.settled() {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := m.activeKeys()

	switch {
	case key.Matches(msg, keys.Quit):
		m.quit()
		return nil

	case key.Matches(msg, keys.Undo):
		if m.control.Activate(m.composer.Cancel) {
			m.composer.SetContentHeight(m.editor.ContentHeight())
		}
		return nil

	case key.Matches(msg, keys.Send):
		m.composer.Edit(m.editor.Value())
		if m.composer.Submit() {
			m.composer.SetContentHeight(m.editor.ContentHeight())
		}
		return nil

	case key.Matches(msg, keys.Blur):
		m.editor.Blur()
		m.scroll.SetKeyboardVisible(false)
		return nil

	case key.Matches(msg, keys.Focus):
		m.scroll.SetKeyboardVisible(true)
		return m.editor.Focus()

	case key.Matches(msg, keys.ScrollUp):
		m.messages.LineUp(1)
		return nil

	case key.Matches(msg, keys.ScrollDown):
		m.messages.LineDown(1)
		return nil
	}

	if !m.editor.Focused() {
		return nil
	}

	cmd := m.editor.Update(msg)
	m.composer.Edit(m.editor.Value())
	m.composer.SetContentHeight(m.editor.ContentHeight())
	return cmd
}

func (m *Model) activeKeys() KeyMap {
	if m.editor.Focused() {
		return m.keys.composing()
	}
	return m.keys.browsing()
}

// quit commits pending sends and exits once in-flight store calls finish.
func (m *Model) quit() {
	m.quitting = true
	m.composer.Close()
	m.scroll.Stop()
}

// settled reports whether no save or retraction is still running.
func (m *Model) settled() bool {
	return len(m.timeline.saving) == 0 && m.retracting == 0
}

func (m *Model) handleSaved(msg messageSavedMsg) {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Str("message_id", msg.id).Msg("send failed")
		m.timeline.SaveFailed(msg.id)
		m.err = msg.err
		m.refresh()
		return
	}

	if m.timeline.Saved(msg.message) {
		m.queued = append(m.queued, m.retractMessage(msg.id))
	}
	m.refresh()
}

// onSend shows the message in flight and starts saving it.
func (m *Model) onSend(text string) {
	msg, err := chat.NewMessage(m.service.User(), text)
	if err != nil {
		m.err = err
		return
	}

	m.err = nil
	m.lastSent = msg.ID
	m.timeline.Add(msg)
	m.queued = append(m.queued, m.saveMessage(msg))
	m.refresh()
}

// onCancel removes the newest send, retracting it now or once its save lands.
func (m *Model) onCancel() {
	id := m.lastSent
	m.lastSent = ""
	if id == "" {
		return
	}

	if m.timeline.Cancel(id) {
		m.queued = append(m.queued, m.retractMessage(id))
	}
	m.refresh()
}

func (m *Model) onComposerChange(s composer.State) {
	if sending, ok := s.(composer.Sending); ok {
		m.control.Show(sending.Window)
	} else {
		m.control.Hide()
	}
	m.editor.SetValue(s.Draft())
}

func (m *Model) onHeightChange(h int) {
	m.editor.SetHeight(h)
	m.layout()
	m.scroll.SetContentHeight(h)
}

func (m *Model) onScroll(cmd scrollsync.Command[string]) {
	m.messages.ScrollTo(cmd.Target, cmd.Anchor)
}

// refresh re-renders the list and points the scroll target at the newest
// message.
func (m *Model) refresh() {
	m.messages.SetMessages(m.timeline.Messages(), m.spinner.View())

	newest, ok := m.timeline.Newest()
	if !m.mounted {
		m.mounted = true
		m.scroll.Mount(newest, ok)
		return
	}
	if ok {
		m.scroll.SetTarget(newest)
	} else {
		m.scroll.ClearTarget()
	}
}

func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	m.editor.SetWidth(m.width)
	m.control.SetWidth(m.width)
	m.help.Width = m.width
	m.messages.SetSize(m.width, m.height-chromeHeight-m.editor.Height())
	m.messages.SetMessages(m.timeline.Messages(), m.spinner.View())
}

// View renders the screen.
func (m *Model) View() string {
	if m.quitting && m.settled() {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.messages.View())
	b.WriteString("\n")
	b.WriteString(m.control.View())
	b.WriteString("\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else {
		b.WriteString(lipgloss.NewStyle().PaddingLeft(1).Render(m.help.View(m.activeKeys())))
	}

	return b.String()
}

func (m *Model) headerView() string {
	title := " " + boardIconStyle(m.board).Render(m.board.Icon()) + " " + boardNameStyle(m.board).Render(m.board.Name)
	if m.board.ShowBadge() {
		title += " " + styles.BadgeStyle.Render(strconv.Itoa(m.board.MessagesCount))
	}

	desc := m.board.Description
	if desc == "" {
		desc = "created by " + m.board.Creator
	}
	return title + "\n" + descriptionStyle.PaddingLeft(1).Render(desc)
}
