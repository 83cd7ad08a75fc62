package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
)

func TestNewBoardPicker(t *testing.T) {
	boards := []chat.Board{
		{ID: "b1", Name: "general"},
		{ID: "b2", Name: "random", MessagesCount: 3},
		{ID: "b3", Name: "ops"},
	}

	t.Run("defaults to first board", func(t *testing.T) {
		p := NewBoardPicker(boards, "")
		assert.Equal(t, "b1", p.Selected().ID)
	})

	t.Run("preselects matching id", func(t *testing.T) {
		p := NewBoardPicker(boards, "b3")
		assert.Equal(t, "b3", p.Selected().ID)
	})

	t.Run("empty list errors", func(t *testing.T) {
		_, err := NewBoardPicker(nil, "").Run()
		require.ErrorIs(t, err, ErrNoBoards)
	})
}

func TestBoardOptionLabel(t *testing.T) {
	tests := []struct {
		name  string
		board chat.Board
		want  string
	}{
		{"no badge for one message", chat.Board{Name: "general", MessagesCount: 1}, "○ general"},
		{"badge above one", chat.Board{Name: "general", MessagesCount: 4}, "○ general (4)"},
		{"unread watch board", chat.Board{Name: "ops", Type: chat.Watch("s1"), Status: chat.StatusUnread}, "◉ ops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, boardOptionLabel(tt.board))
		})
	}
}

func TestNewBoardForm(t *testing.T) {
	form := NewBoardForm(map[string]bool{"general": true})
	require.NotNil(t, form.Form())

	form.name = "random"
	form.description = "anything goes"
	assert.Equal(t, BoardFormResult{Name: "random", Description: "anything goes"}, form.Result())
}
