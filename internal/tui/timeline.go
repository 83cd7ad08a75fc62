package tui

import (
	"slices"

	"github.com/hay-kot/parley/internal/core/chat"
)

// timeline is the ordered list of messages shown on a board. Saved messages
// come from the store in ascending order; messages sent from this screen are
// appended in flight and replaced in place when their save completes.
//
// A message cancelled while its save is still running cannot be retracted
// yet, so it is remembered and retracted once the save lands.
type timeline struct {
	entries []chat.Message

	// saving holds ids with a save command in flight.
	saving map[string]struct{}
	// retractOnSave holds saving ids cancelled before the save completed.
	retractOnSave map[string]struct{}
	// hidden holds cancelled ids until their retraction completes, so a
	// reload in between does not bring them back.
	hidden map[string]struct{}
	// unconfirmed holds ids saved from this screen that no reload has
	// returned yet. A reload that read the store before the save landed must
	// not drop them.
	unconfirmed map[string]struct{}
}

func newTimeline() *timeline {
	return &timeline{
		saving:        make(map[string]struct{}),
		retractOnSave: make(map[string]struct{}),
		hidden:        make(map[string]struct{}),
		unconfirmed:   make(map[string]struct{}),
	}
}

// Messages returns the visible messages, oldest first.
func (t *timeline) Messages() []chat.Message {
	return t.entries
}

// Len returns the number of visible messages.
func (t *timeline) Len() int {
	return len(t.entries)
}

// Newest returns the id of the last visible message.
func (t *timeline) Newest() (string, bool) {
	if len(t.entries) == 0 {
		return "", false
	}
	return t.entries[len(t.entries)-1].ID, true
}

// InFlight reports whether any visible message is waiting for the store.
func (t *timeline) InFlight() bool {
	return slices.ContainsFunc(t.entries, chat.Message.InFlight)
}

// Add appends an optimistic message whose save is about to start.
func (t *timeline) Add(m chat.Message) {
	t.entries = append(t.entries, m)
	t.saving[m.ID] = struct{}{}
}

// Saved swaps in the stored version of a message. It reports true when the
// message was cancelled meanwhile and must now be retracted.
func (t *timeline) Saved(m chat.Message) (retract bool) {
	delete(t.saving, m.ID)

	if _, ok := t.retractOnSave[m.ID]; ok {
		delete(t.retractOnSave, m.ID)
		return true
	}

	if _, hidden := t.hidden[m.ID]; hidden {
		return false
	}
	t.unconfirmed[m.ID] = struct{}{}
	if i := t.index(m.ID); i >= 0 {
		t.entries[i] = m
	} else {
		t.entries = append(t.entries, m)
	}
	return false
}

// SaveFailed drops a message whose save returned an error.
func (t *timeline) SaveFailed(id string) {
	delete(t.saving, id)
	delete(t.retractOnSave, id)
	delete(t.hidden, id)
	delete(t.unconfirmed, id)
	t.remove(id)
}

// Cancel removes a message from view. It reports true when the message can be
// retracted right away, and false when the retraction has to wait for the
// save in flight.
func (t *timeline) Cancel(id string) (retractNow bool) {
	t.remove(id)
	t.hidden[id] = struct{}{}
	delete(t.unconfirmed, id)

	if _, ok := t.saving[id]; ok {
		t.retractOnSave[id] = struct{}{}
		return false
	}
	return true
}

// Retracted forgets a cancelled message once the store has deleted it.
func (t *timeline) Retracted(id string) {
	delete(t.hidden, id)
}

// Reload replaces the saved messages with a fresh read of the store, keeping
// messages that are still in flight, or saved here but missing from the read,
// at the end.
func (t *timeline) Reload(saved []chat.Message) {
	entries := make([]chat.Message, 0, len(saved)+len(t.saving))
	seen := make(map[string]struct{}, len(saved))

	for _, m := range saved {
		if _, hidden := t.hidden[m.ID]; hidden {
			continue
		}
		seen[m.ID] = struct{}{}
		delete(t.unconfirmed, m.ID)
		entries = append(entries, m)
	}

	for _, m := range t.entries {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		_, unconfirmed := t.unconfirmed[m.ID]
		if m.InFlight() || unconfirmed {
			entries = append(entries, m)
		}
	}

	t.entries = entries
}

func (t *timeline) index(id string) int {
	return slices.IndexFunc(t.entries, func(m chat.Message) bool { return m.ID == id })
}

func (t *timeline) remove(id string) {
	if i := t.index(id); i >= 0 {
		t.entries = slices.Delete(t.entries, i, i+1)
	}
}
