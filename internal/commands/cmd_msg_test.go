package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/parley"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/internal/store/jsonfile"
)

func newSender(t *testing.T, delay time.Duration) (*sender, *parley.Service, chat.Board) {
	t.Helper()

	store := jsonfile.New(filepath.Join(t.TempDir(), "records.json"))
	svc := parley.New(store, "alice", zerolog.Nop())
	board, err := svc.CreateBoard(context.Background(), parley.CreateBoardOptions{Name: "general"})
	require.NoError(t, err)

	return &sender{
		service: svc,
		board:   board,
		delay:   delay,
		printer: printer.New(io.Discard),
		preview: "hello",
	}, svc, board
}

func listAll(t *testing.T, svc *parley.Service, boardID string) []chat.Message {
	t.Helper()
	msgs, err := svc.ListMessages(context.Background(), boardID, parley.ListMessagesOptions{})
	require.NoError(t, err)
	return msgs
}

func TestSender_CommitsAfterDelay(t *testing.T) {
	s, svc, board := newSender(t, 100*time.Millisecond)

	out, err := s.send(context.Background(), "hello", make(chan os.Signal))
	require.NoError(t, err)
	assert.False(t, out.cancelled)
	assert.NotEmpty(t, out.id)

	msgs := listAll(t, svc, board.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, out.id, msgs[0].ID)
}

func TestSender_ZeroDelay(t *testing.T) {
	s, svc, board := newSender(t, 0)

	out, err := s.send(context.Background(), "hello", make(chan os.Signal))
	require.NoError(t, err)
	assert.False(t, out.cancelled)
	assert.Len(t, listAll(t, svc, board.ID), 1)
}

func TestSender_InterruptCancels(t *testing.T) {
	s, svc, board := newSender(t, 10*time.Second)

	sigs := make(chan os.Signal, 1)
	sigs <- os.Interrupt

	out, err := s.send(context.Background(), "hello", sigs)
	require.NoError(t, err)
	assert.True(t, out.cancelled)
	assert.Empty(t, listAll(t, svc, board.ID), "retracted")
}

func TestSender_MissingBoard(t *testing.T) {
	s, _, _ := newSender(t, time.Second)
	s.board.ID = "missing"

	_, err := s.send(context.Background(), "hello", make(chan os.Signal))
	require.ErrorIs(t, err, parley.ErrBoardNotFound)
}

func TestPrintMessagesTemplate(t *testing.T) {
	msgs := []chat.Message{
		{ID: "m1", User: "alice", Text: "hello\nthere"},
		{ID: "m2", User: "bob", Text: "a rather long reply"},
	}

	var buf bytes.Buffer
	err := printMessagesTemplate(&buf, `{{ .User }}: {{ oneline .Text | trunc 10 }} {{ when "15:04" .CreatedAt }}`, msgs)
	require.NoError(t, err)

	assert.Equal(t, "alice: hello the… -\nbob: a rather … -\n", buf.String())

	err = printMessagesTemplate(&buf, "{{ .Missing }}", msgs)
	assert.Error(t, err)
}
