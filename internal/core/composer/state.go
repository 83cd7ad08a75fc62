package composer

import "github.com/hay-kot/parley/internal/core/cancelwindow"

// State is the composer's current state: Idle, Editing or Sending.
type State interface {
	// Draft returns the text currently in the editor.
	Draft() string
	isState()
}

// Idle is an empty composer with nothing pending.
type Idle struct{}

// Editing holds a non-empty draft with no cancellable send on offer.
type Editing struct {
	Text string
}

// Sending holds the most recent submission while its cancel window is open.
// Text is the draft typed since the submission, which is independent of it.
type Sending struct {
	Submitted string
	Text      string
	Window    *cancelwindow.Window
}

func (Idle) Draft() string { return "" }
func (s Editing) Draft() string { return s.Text }
func (s Sending) Draft() string { return s.Text }

func (Idle) isState() {}
func (Editing) isState() {}
func (Sending) isState() {}

// draftState returns Idle or Editing for text.
func draftState(text string) State {
	if text == "" {
		return Idle{}
	}
	return Editing{Text: text}
}
