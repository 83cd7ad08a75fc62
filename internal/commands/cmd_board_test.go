package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/parley/internal/core/chat"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"collapses whitespace", "hello\n\n  world", 20, "hello world"},
		{"truncates", "abcdefghij", 5, "abcd…"},
		{"counts runes", "héllo wörld", 6, "héllo…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.text, tt.n))
		})
	}
}

func TestFilterBoards(t *testing.T) {
	boards := []chat.Board{
		{ID: "b1", Name: "Café", Description: "coffee talk"},
		{ID: "b2", Name: "ops", Description: "pager"},
	}

	got := filterBoards(boards, "cafe")
	assert.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)

	assert.Len(t, filterBoards(boards, ""), 2)
	assert.Empty(t, filterBoards(boards, "nothing"))
}
