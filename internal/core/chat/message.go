package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
)

var ErrEmptyUser = errors.New("user is required")

// Message is a single post on a board. A nil CreationDate marks a message
// that has not been saved by the store yet.
type Message struct {
	ID           string
	User         string
	Text         string
	CreationDate *time.Time
}

// NewMessage constructs an in-flight message with a generated ID.
func NewMessage(user, text string) (Message, error) {
	m := Message{
		ID:   uuid.NewString(),
		User: user,
		Text: text,
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks the message as criterio.FieldErrors.
func (m Message) Validate() error {
	if m.User == "" {
		return criterio.NewFieldErrors("user", ErrEmptyUser)
	}
	return nil
}

// InFlight reports whether the message is still waiting for the store.
func (m Message) InFlight() bool { return m.CreationDate == nil }

// Saved reports whether the store has acknowledged the message.
func (m Message) Saved() bool { return m.CreationDate != nil }

// Contains reports whether q occurs in the author or text, ignoring case and
// diacritics.
func (m Message) Contains(q string) bool {
	return containsFolded(m.User, q) || containsFolded(m.Text, q)
}
