// Package record defines the generic record-store contract that boards and
// messages are mapped onto.
package record

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrWrongRecordType is returned when decoding a record of another type.
	ErrWrongRecordType = errors.New("wrong record type")
)

// MissingFieldError is returned when decoding a record without a required
// field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// Action is what happens to a referencing record when its target is deleted.
type Action int

const (
	ActionNone Action = iota
	// ActionDeleteSelf deletes the referencing record along with its target.
	ActionDeleteSelf
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionDeleteSelf:
		return "delete_self"
	default:
		return "unknown"
	}
}

// Reference links a record to another record by name.
type Reference struct {
	RecordName string `json:"record_name"`
	Action     Action `json:"action"`
}

// Record is a typed bag of string fields addressed by Name. CreationDate is
// assigned by the store on the first successful save.
type Record struct {
	Type         string               `json:"type"`
	Name         string               `json:"name"`
	Fields       map[string]string    `json:"fields,omitempty"`
	References   map[string]Reference `json:"references,omitempty"`
	CreationDate *time.Time           `json:"creation_date,omitempty"`
}

// New returns an empty record of the given type and name.
func New(typ, name string) Record {
	return Record{
		Type:       typ,
		Name:       name,
		Fields:     map[string]string{},
		References: map[string]Reference{},
	}
}

// Field returns a required field, or a MissingFieldError.
func (r Record) Field(key string) (string, error) {
	v, ok := r.Fields[key]
	if !ok {
		return "", &MissingFieldError{Field: key}
	}
	return v, nil
}

// Database stores records.
type Database interface {
	// Save creates or replaces a record and returns it as stored.
	Save(ctx context.Context, r Record) (Record, error)
	// Fetch returns the record of the given type and name.
	Fetch(ctx context.Context, typ, name string) (Record, error)
	// Delete removes a record and, transitively, every record that references
	// it with ActionDeleteSelf.
	Delete(ctx context.Context, name string) error
	// Query returns the records matching q in q.Sort order.
	Query(ctx context.Context, q Query) ([]Record, error)
}
