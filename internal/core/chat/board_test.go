package chat

import (
	"errors"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name    string
		creator string
		board   string
		opts    []BoardOption
		wantErr error
	}{
		{name: "valid", creator: "alice", board: "abc"},
		{name: "empty creator", creator: "", board: "abc", wantErr: ErrEmptyCreator},
		{name: "empty name", creator: "alice", board: "", wantErr: ErrEmptyName},
		{name: "two characters", creator: "alice", board: "ab", wantErr: ErrNameTooShort},
		{name: "creator checked before name", creator: "", board: "", wantErr: ErrEmptyCreator},
		{name: "negative count", creator: "alice", board: "abc", opts: []BoardOption{WithMessagesCount(-1)}, wantErr: ErrNegativeCount},
		{name: "two grapheme clusters", creator: "alice", board: "éé", wantErr: ErrNameTooShort},
		{name: "three grapheme clusters", creator: "alice", board: "ééé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard(tt.creator, tt.board, "desc", tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, b.ID)
			assert.Equal(t, tt.creator, b.Creator)
			assert.Equal(t, tt.board, b.Name)
			assert.Equal(t, "desc", b.Description)
		})
	}
}

func TestNewBoard_Options(t *testing.T) {
	last := Message{ID: "m1", User: "bob", Text: "hi"}

	b, err := NewBoard("alice", "general", "",
		WithBoardID("b1"),
		WithMessagesCount(3),
		WithLastMessage(last),
		WithBoardType(Watch("sub-1")),
	)
	require.NoError(t, err)

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, 3, b.MessagesCount)
	require.NotNil(t, b.LastMessage)
	assert.Equal(t, last, *b.LastMessage)
	assert.True(t, b.Type.IsWatch())
}

func TestBoard_Validate(t *testing.T) {
	err := Board{Name: "ab", MessagesCount: -2}.Validate()

	var fieldErrs criterio.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 3)

	assert.Equal(t, "creator", fieldErrs[0].Field)
	assert.ErrorIs(t, fieldErrs[0].Err, ErrEmptyCreator)
	assert.Equal(t, "name", fieldErrs[1].Field)
	assert.ErrorIs(t, fieldErrs[1].Err, ErrNameTooShort)
	assert.Equal(t, "messages_count", fieldErrs[2].Field)

	assert.NoError(t, Board{Creator: "alice", Name: "general"}.Validate())
}

func TestBoardType(t *testing.T) {
	tests := []struct {
		name   string
		typ    BoardType
		sub    string
		hasSub bool
		notify bool
		watch  bool
		str    string
	}{
		{name: "none", typ: BoardType{}, str: "none"},
		{name: "notify", typ: Notify("s1"), sub: "s1", hasSub: true, notify: true, str: "notify"},
		{name: "watch", typ: Watch("s2"), sub: "s2", hasSub: true, watch: true, str: "watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, ok := tt.typ.SubscriptionID()
			assert.Equal(t, tt.sub, sub)
			assert.Equal(t, tt.hasSub, ok)
			assert.Equal(t, tt.notify, tt.typ.IsNotify())
			assert.Equal(t, tt.watch, tt.typ.IsWatch())
			assert.Equal(t, tt.str, tt.typ.String())
		})
	}

	assert.Equal(t, Notify("x"), Notify("x"), "types compare by value")
}

func TestBoard_Icon(t *testing.T) {
	tests := []struct {
		status BoardStatus
		typ    BoardType
		want   string
	}{
		{StatusUnread, Notify("s"), "◆"},
		{StatusUnread, Watch("s"), "◉"},
		{StatusUnread, BoardType{}, "●"},
		{StatusRead, Notify("s"), "◇"},
		{StatusNone, Watch("s"), "◎"},
		{StatusRead, BoardType{}, "○"},
	}

	for _, tt := range tests {
		t.Run(tt.status.String()+"/"+tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Board{Status: tt.status, Type: tt.typ}.Icon())
		})
	}
}

func TestBoard_ShowBadge(t *testing.T) {
	assert.False(t, Board{MessagesCount: 0}.ShowBadge())
	assert.False(t, Board{MessagesCount: 1}.ShowBadge())
	assert.True(t, Board{MessagesCount: 2}.ShowBadge())
}
