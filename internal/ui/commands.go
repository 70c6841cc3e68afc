// Package ui provides terminal user interface components for the thoughts app.
// This file contains tea.Cmd factories for work that leaves the process
// (clipboard) or must run off the event loop (undo, timers).
package ui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"lifethoughts/internal/catalog"
)

// transitionDuration is how long a newly paged card is drawn dimmed.
const transitionDuration = 150 * time.Millisecond

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// transitionCmd ends the card fade identified by seq.
func transitionCmd(seq int) tea.Cmd {
	return tea.Tick(transitionDuration, func(time.Time) tea.Msg {
		return transitionDoneMsg{seq: seq}
	})
}

// ShareText formats a quote for sharing.
func ShareText(q catalog.Quote) string {
	text := "“" + q.Text + "”"
	if a := q.Attribution(); a != "" {
		text += " " + a
	}
	return text
}

// copyQuoteCmd copies a quote to the system clipboard.
func copyQuoteCmd(q catalog.Quote) tea.Cmd {
	return func() tea.Msg {
		err := writeClipboard(ShareText(q))
		return copiedMsg{id: q.ID, err: err}
	}
}

// undoCmd reverts the newest library edit.
func undoCmd(h *History) tea.Cmd {
	return func() tea.Msg {
		desc, _ := h.Undo()
		return undoResultMsg{desc: desc}
	}
}

// redoCmd reapplies the newest undone library edit.
func redoCmd(h *History) tea.Cmd {
	return func() tea.Msg {
		desc, _ := h.Redo()
		return redoResultMsg{desc: desc}
	}
}

// statusCmd shows text in the status line.
func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}
