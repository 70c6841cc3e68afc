package ui

import (
	"sync"

	"github.com/mattn/go-runewidth"
)

// historyLimit caps the number of edits that can be undone.
const historyLimit = 50

// libraryWriter is the part of the store that history replays against.
type libraryWriter interface {
	SaveThought(id string)
	UnsaveThought(id string)
}

// libraryEdit is one save or unsave. saved is the state after the edit.
type libraryEdit struct {
	id    string
	text  string
	saved bool
}

func (e libraryEdit) describe() string {
	verb := "Removed"
	if e.saved {
		verb = "Saved"
	}
	return verb + ": " + truncateText(e.text, 24)
}

// History is the undo/redo log of library edits. Undo and redo run as
// commands off the update loop, so access is locked.
type History struct {
	mu     sync.Mutex
	lib    libraryWriter
	done   []libraryEdit
	undone []libraryEdit
}

// NewHistory returns an empty history that replays edits against lib.
func NewHistory(lib libraryWriter) *History {
	return &History{lib: lib}
}

// Record appends an edit the user just made and drops anything that was
// available to redo.
func (h *History) Record(id, text string, saved bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undone = h.undone[:0]
	if len(h.done) == historyLimit {
		h.done = append(h.done[:0], h.done[1:]...)
	}
	h.done = append(h.done, libraryEdit{id: id, text: text, saved: saved})
}

// Undo reverts the newest edit and returns its description. ok is false
// when there is nothing to undo.
func (h *History) Undo() (desc string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := pop(&h.done)
	if !ok {
		return "", false
	}
	h.apply(e.id, !e.saved)
	h.undone = append(h.undone, e)
	return e.describe(), true
}

// Redo reapplies the newest undone edit.
func (h *History) Redo() (desc string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := pop(&h.undone)
	if !ok {
		return "", false
	}
	h.apply(e.id, e.saved)
	h.done = append(h.done, e)
	return e.describe(), true
}

// Depth reports how many edits can be undone and redone.
func (h *History) Depth() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.done), len(h.undone)
}

// Clear forgets every edit.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = h.done[:0]
	h.undone = h.undone[:0]
}

func (h *History) apply(id string, saved bool) {
	if saved {
		h.lib.SaveThought(id)
	} else {
		h.lib.UnsaveThought(id)
	}
}

func pop(stack *[]libraryEdit) (libraryEdit, bool) {
	n := len(*stack)
	if n == 0 {
		return libraryEdit{}, false
	}
	e := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return e, true
}

// truncateText shortens text to maxLen cells with an ellipsis if needed.
func truncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return runewidth.Truncate(text, maxLen, "..")
}
