// Package ui provides terminal user interface components for the thoughts app.
// This file defines the message types produced by commands and timers.
package ui

import "time"

// tickMsg is sent periodically to expire status messages.
type tickMsg time.Time

// transitionDoneMsg ends the card fade started by paging. seq discards
// ticks from transitions that were superseded.
type transitionDoneMsg struct {
	seq int
}

// undoResultMsg carries the description of the reverted edit, empty when
// there was nothing to undo.
type undoResultMsg struct{ desc string }

// redoResultMsg is the redo counterpart of undoResultMsg.
type redoResultMsg struct{ desc string }

// copiedMsg is sent when a quote has been copied to the clipboard.
type copiedMsg struct {
	id  string
	err error
}

// savedToggledMsg reports a save or unsave made by a pane so the app can
// record it in the undo history.
type savedToggledMsg struct {
	id    string
	text  string
	saved bool
}

// prefsChangedMsg is sent after the preferences were changed from a pane.
type prefsChangedMsg struct {
	desc string
	err  error
}

// onboardingDoneMsg is sent when the first-run flow is confirmed.
type onboardingDoneMsg struct {
	err error
}

// statusMsg asks the app to show a transient status line.
type statusMsg struct {
	text  string
	isErr bool
}
