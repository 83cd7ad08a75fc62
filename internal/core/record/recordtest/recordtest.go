// Package recordtest holds a conformance suite for record.Database backends.
package recordtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/record"
)

// Clock is a settable time source for backends under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Factory opens an empty database that stamps creation dates with now.
type Factory func(t *testing.T, now func() time.Time) record.Database

func board(name string) record.Record {
	r := record.New("Board", name)
	r.Fields["name"] = name
	return r
}

func message(name, boardName, user string) record.Record {
	r := record.New("Message", name)
	r.Fields["user"] = user
	r.Fields["text"] = "text of " + name
	r.References["board"] = record.Reference{RecordName: boardName, Action: record.ActionDeleteSelf}
	return r
}

func names(records []record.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

// Run exercises a backend against the record.Database contract.
func Run(t *testing.T, open Factory) {
	ctx := context.Background()

	t.Run("save assigns creation date", func(t *testing.T) {
		clock := NewClock()
		db := open(t, clock.Now)

		saved, err := db.Save(ctx, board("general"))
		require.NoError(t, err)
		require.NotNil(t, saved.CreationDate)
		assert.True(t, clock.Now().Equal(*saved.CreationDate))

		got, err := db.Fetch(ctx, "Board", "general")
		require.NoError(t, err)
		if diff := cmp.Diff(saved, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("save keeps first creation date", func(t *testing.T) {
		clock := NewClock()
		db := open(t, clock.Now)

		first, err := db.Save(ctx, board("general"))
		require.NoError(t, err)

		clock.Advance(time.Hour)
		r := board("general")
		r.Fields["description"] = "updated"
		second, err := db.Save(ctx, r)
		require.NoError(t, err)

		assert.True(t, first.CreationDate.Equal(*second.CreationDate))

		got, err := db.Fetch(ctx, "Board", "general")
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Fields["description"])
	})

	t.Run("fetch not found", func(t *testing.T) {
		db := open(t, NewClock().Now)

		_, err := db.Fetch(ctx, "Board", "missing")
		require.ErrorIs(t, err, record.ErrNotFound)

		_, err = db.Save(ctx, board("general"))
		require.NoError(t, err)
		_, err = db.Fetch(ctx, "Message", "general")
		require.ErrorIs(t, err, record.ErrNotFound, "type must match")
	})

	t.Run("query sorts and filters", func(t *testing.T) {
		clock := NewClock()
		db := open(t, clock.Now)

		for _, r := range []record.Record{
			board("b1"),
			board("b2"),
			message("m1", "b1", "bob"),
			message("m2", "b2", "alice"),
			message("m3", "b1", "alice"),
		} {
			_, err := db.Save(ctx, r)
			require.NoError(t, err)
			clock.Advance(time.Second)
		}

		got, err := db.Query(ctx, record.Query{Type: "Message", Field: "board", Equals: "b1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"m3", "m1"}, names(got))

		got, err = db.Query(ctx, record.Query{
			Type: "Message", Field: "board", Equals: "b1",
			Sort: record.Sort{Key: record.SortCreationDate, Ascending: true},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m3"}, names(got))

		got, err = db.Query(ctx, record.Query{Type: "Message", Sort: record.Sort{Key: "user", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m3", "m1"}, names(got))

		got, err = db.Query(ctx, record.Query{Type: "Message", Field: "user", Equals: "alice", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"m3"}, names(got))

		got, err = db.Query(ctx, record.Query{Type: "Board", Sort: record.Sort{Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{"b1", "b2"}, names(got))

		got, err = db.Query(ctx, record.Query{Type: "Message", Field: "board", Equals: "nope"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("delete cascades", func(t *testing.T) {
		db := open(t, NewClock().Now)

		keep := message("m3", "b2", "carol")
		keep.References["quote"] = record.Reference{RecordName: "m1", Action: record.ActionNone}

		for _, r := range []record.Record{
			board("b1"),
			board("b2"),
			message("m1", "b1", "bob"),
			message("m2", "b1", "alice"),
			keep,
		} {
			_, err := db.Save(ctx, r)
			require.NoError(t, err)
		}

		require.NoError(t, db.Delete(ctx, "b1"))

		for _, name := range []string{"b1", "m1", "m2"} {
			typ := "Message"
			if name == "b1" {
				typ = "Board"
			}
			_, err := db.Fetch(ctx, typ, name)
			assert.ErrorIs(t, err, record.ErrNotFound, name)
		}

		_, err := db.Fetch(ctx, "Message", "m3")
		assert.NoError(t, err, "ActionNone references do not cascade")
		_, err = db.Fetch(ctx, "Board", "b2")
		assert.NoError(t, err)

		assert.ErrorIs(t, db.Delete(ctx, "b1"), record.ErrNotFound)
	})

	t.Run("delete leaf", func(t *testing.T) {
		db := open(t, NewClock().Now)

		_, err := db.Save(ctx, board("b1"))
		require.NoError(t, err)
		_, err = db.Save(ctx, message("m1", "b1", "bob"))
		require.NoError(t, err)

		require.NoError(t, db.Delete(ctx, "m1"))

		_, err = db.Fetch(ctx, "Board", "b1")
		assert.NoError(t, err)
		got, err := db.Query(ctx, record.Query{Type: "Message"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("save generates name", func(t *testing.T) {
		db := open(t, NewClock().Now)

		saved, err := db.Save(ctx, record.New("Board", ""))
		require.NoError(t, err)
		assert.NotEmpty(t, saved.Name)
	})
}
