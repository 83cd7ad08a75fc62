package chat

import (
	"fmt"

	"github.com/hay-kot/parley/internal/core/record"
)

// Record types.
const (
	BoardRecordType   = "Board"
	MessageRecordType = "Message"
)

// Record field keys.
const (
	KeyID          = "id"
	KeyCreator     = "creator"
	KeyName        = "name"
	KeyDescription = "description"
	KeyUser        = "user"
	KeyText        = "text"
	KeyBoard       = "board"
)

// Record encodes the board. Derived fields, type and status are not stored.
func (b Board) Record() record.Record {
	r := record.New(BoardRecordType, b.ID)
	r.Fields[KeyID] = b.ID
	r.Fields[KeyCreator] = b.Creator
	r.Fields[KeyName] = b.Name
	r.Fields[KeyDescription] = b.Description
	return r
}

// BoardFromRecord decodes a board. The ID comes from the record name and
// MessagesCount and LastMessage are left at their zero values.
func BoardFromRecord(r record.Record) (Board, error) {
	if r.Type != BoardRecordType {
		return Board{}, fmt.Errorf("%w: %q is not %q", record.ErrWrongRecordType, r.Type, BoardRecordType)
	}

	creator, err := r.Field(KeyCreator)
	if err != nil {
		return Board{}, err
	}
	name, err := r.Field(KeyName)
	if err != nil {
		return Board{}, err
	}
	description, err := r.Field(KeyDescription)
	if err != nil {
		return Board{}, err
	}

	return Board{
		ID:          r.Name,
		Creator:     creator,
		Name:        name,
		Description: description,
	}, nil
}

// Record encodes the message with a cascading reference to its board. The
// creation date is assigned by the store and is not encoded.
func (m Message) Record(boardID string) record.Record {
	r := record.New(MessageRecordType, m.ID)
	r.Fields[KeyID] = m.ID
	r.Fields[KeyUser] = m.User
	r.Fields[KeyText] = m.Text
	r.References[KeyBoard] = record.Reference{
		RecordName: boardID,
		Action:     record.ActionDeleteSelf,
	}
	return r
}

// MessageFromRecord decodes a message, carrying over the store's creation
// date.
func MessageFromRecord(r record.Record) (Message, error) {
	if r.Type != MessageRecordType {
		return Message{}, fmt.Errorf("%w: %q is not %q", record.ErrWrongRecordType, r.Type, MessageRecordType)
	}

	user, err := r.Field(KeyUser)
	if err != nil {
		return Message{}, err
	}
	text, err := r.Field(KeyText)
	if err != nil {
		return Message{}, err
	}

	m := Message{
		ID:   r.Name,
		User: user,
		Text: text,
	}
	if r.CreationDate != nil {
		at := *r.CreationDate
		m.CreationDate = &at
	}
	return m, nil
}

// BoardID returns the board a message record belongs to.
func BoardID(r record.Record) (string, bool) {
	ref, ok := r.References[KeyBoard]
	return ref.RecordName, ok
}

// MessageQuery selects the messages of a board sorted by sortKey. An empty
// sortKey sorts by creation date.
func MessageQuery(boardID, sortKey string, ascending bool) record.Query {
	if sortKey == "" {
		sortKey = record.SortCreationDate
	}
	return record.Query{
		Type:   MessageRecordType,
		Field:  KeyBoard,
		Equals: boardID,
		Sort:   record.Sort{Key: sortKey, Ascending: ascending},
	}
}

// DefaultMessageQuery selects a board's messages newest first.
func DefaultMessageQuery(boardID string) record.Query {
	return MessageQuery(boardID, record.SortCreationDate, false)
}
