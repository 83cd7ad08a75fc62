package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/parley/internal/core/chat"
)

func savedMsg(id string, at time.Time) chat.Message {
	return chat.Message{ID: id, User: "alice", Text: id, CreationDate: &at}
}

func ids(msgs []chat.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestTimeline_SaveReplacesInFlight(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tl := newTimeline()
	tl.Reload([]chat.Message{savedMsg("m1", now)})

	tl.Add(chat.Message{ID: "m2", User: "alice", Text: "hi"})
	assert.True(t, tl.InFlight())
	newest, ok := tl.Newest()
	assert.True(t, ok)
	assert.Equal(t, "m2", newest)

	retract := tl.Saved(savedMsg("m2", now.Add(time.Second)))
	assert.False(t, retract)
	assert.False(t, tl.InFlight())
	assert.Equal(t, []string{"m1", "m2"}, ids(tl.Messages()))
}

func TestTimeline_CancelAfterSaveRetractsNow(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tl := newTimeline()

	tl.Add(chat.Message{ID: "m1", User: "alice", Text: "hi"})
	tl.Saved(savedMsg("m1", now))

	assert.True(t, tl.Cancel("m1"))
	assert.Zero(t, tl.Len())

	// A reload racing the retraction must not resurrect it.
	tl.Reload([]chat.Message{savedMsg("m1", now)})
	assert.Zero(t, tl.Len())

	tl.Retracted("m1")
	tl.Reload(nil)
	assert.Zero(t, tl.Len())
}

func TestTimeline_CancelBeforeSaveDefersRetract(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tl := newTimeline()

	tl.Add(chat.Message{ID: "m1", User: "alice", Text: "hi"})
	assert.False(t, tl.Cancel("m1"), "save still running")
	assert.Zero(t, tl.Len())

	assert.True(t, tl.Saved(savedMsg("m1", now)), "retract once saved")
	assert.Zero(t, tl.Len(), "stays hidden")
}

func TestTimeline_SaveFailedDrops(t *testing.T) {
	tl := newTimeline()

	tl.Add(chat.Message{ID: "m1", User: "alice", Text: "hi"})
	tl.SaveFailed("m1")

	assert.Zero(t, tl.Len())
	assert.False(t, tl.InFlight())
}

func TestTimeline_ReloadKeepsInFlight(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tl := newTimeline()

	tl.Reload([]chat.Message{savedMsg("m1", now)})
	tl.Add(chat.Message{ID: "m3", User: "alice", Text: "pending"})

	tl.Reload([]chat.Message{savedMsg("m1", now), savedMsg("m2", now.Add(time.Second))})
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(tl.Messages()))

	// The store already has m3; the saved copy wins over the in-flight one.
	tl.Reload([]chat.Message{savedMsg("m1", now), savedMsg("m2", now.Add(time.Second)), savedMsg("m3", now.Add(2 * time.Second))})
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(tl.Messages()))
	assert.False(t, tl.InFlight())
}

func TestTimeline_StaleReloadKeepsSavedMessage(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tl := newTimeline()
	tl.Reload([]chat.Message{savedMsg("m1", now)})

	tl.Add(chat.Message{ID: "m2", User: "alice", Text: "hi"})
	tl.Saved(savedMsg("m2", now.Add(time.Second)))

	// This read of the store happened before m2 was written.
	tl.Reload([]chat.Message{savedMsg("m1", now)})
	assert.Equal(t, []string{"m1", "m2"}, ids(tl.Messages()))
	assert.False(t, tl.InFlight())

	// Once a reload returns m2 it is owned by the store again, so a later
	// delete elsewhere removes it.
	tl.Reload([]chat.Message{savedMsg("m1", now), savedMsg("m2", now.Add(time.Second))})
	tl.Reload([]chat.Message{savedMsg("m1", now)})
	assert.Equal(t, []string{"m1"}, ids(tl.Messages()))
}
