// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/typetide/typetide/internal/core/domain"
)

// StateUpdated carries a fresh input-state snapshot into the model. It is
// emitted whenever the styling pipeline settles a word, loads a font or
// reconciles an edit.
type StateUpdated struct {
	State domain.InputState
}

// TextChanged is sent when the typed text changes.
type TextChanged struct {
	Text string
}

// ErrorOccurred carries an error to display.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application to exit.
type Quit struct{}
