// Package chat defines the board and message domain types, their
// construction rules and their mapping onto records.
package chat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/rivo/uniseg"
)

// MinNameLength is the longest board name that is still too short.
const MinNameLength = 2

var (
	ErrEmptyCreator  = errors.New("creator is required")
	ErrEmptyName     = errors.New("name is required")
	ErrNameTooShort  = fmt.Errorf("name must be longer than %d characters", MinNameLength)
	ErrNegativeCount = errors.New("messages count can not be negative")
)

// BoardStatus affects only how a board is displayed.
type BoardStatus int

const (
	StatusNone BoardStatus = iota
	StatusRead
	StatusUnread
)

func (s BoardStatus) String() string {
	switch s {
	case StatusRead:
		return "read"
	case StatusUnread:
		return "unread"
	default:
		return "none"
	}
}

// Board is a named conversation that messages are posted to.
type Board struct {
	ID          string
	Creator     string
	Name        string
	Description string

	// LastMessage and MessagesCount are derived from the board's messages and
	// are not persisted with the board.
	LastMessage   *Message
	MessagesCount int

	Type   BoardType
	Status BoardStatus
}

// BoardOption configures NewBoard.
type BoardOption func(*Board)

// WithBoardID sets the board ID instead of generating one.
func WithBoardID(id string) BoardOption {
	return func(b *Board) { b.ID = id }
}

func WithLastMessage(m Message) BoardOption {
	return func(b *Board) { b.LastMessage = &m }
}

func WithMessagesCount(n int) BoardOption {
	return func(b *Board) { b.MessagesCount = n }
}

func WithBoardType(t BoardType) BoardOption {
	return func(b *Board) { b.Type = t }
}

// NewBoard constructs a validated board. It returns the first rule broken, in
// the order creator, name, messages count.
func NewBoard(creator, name, description string, opts ...BoardOption) (Board, error) {
	b := Board{
		Creator:     creator,
		Name:        name,
		Description: description,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	if err := ValidateCreator(b.Creator); err != nil {
		return Board{}, err
	}
	if err := ValidateName(b.Name); err != nil {
		return Board{}, err
	}
	if b.MessagesCount < 0 {
		return Board{}, ErrNegativeCount
	}

	return b, nil
}

// Validate reports every broken rule as criterio.FieldErrors.
func (b Board) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if err := ValidateCreator(b.Creator); err != nil {
		errs = errs.Append("creator", err)
	}
	if err := ValidateName(b.Name); err != nil {
		errs = errs.Append("name", err)
	}
	if b.MessagesCount < 0 {
		errs = errs.Append("messages_count", ErrNegativeCount)
	}
	return errs.ToError()
}

func ValidateCreator(creator string) error {
	if creator == "" {
		return ErrEmptyCreator
	}
	return nil
}

// ValidateName checks a board name. Length is counted in user-perceived
// characters.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if uniseg.GraphemeClusterCount(name) <= MinNameLength {
		return ErrNameTooShort
	}
	return nil
}

// Contains reports whether q occurs in the board's name or description,
// ignoring case and diacritics.
func (b Board) Contains(q string) bool {
	return containsFolded(b.Name, q) || containsFolded(b.Description, q)
}

// ShowBadge reports whether the message count badge is shown.
func (b Board) ShowBadge() bool {
	return b.MessagesCount > 1
}

// Icon returns the board glyph. Unread boards use filled glyphs.
func (b Board) Icon() string {
	unread := b.Status == StatusUnread
	switch {
	case unread && b.Type.IsNotify():
		return "◆"
	case unread && b.Type.IsWatch():
		return "◉"
	case unread:
		return "●"
	case b.Type.IsNotify():
		return "◇"
	case b.Type.IsWatch():
		return "◎"
	default:
		return "○"
	}
}
