// Package tui provides the interactive typing surface for typetide.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/typetide/typetide/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Input is the styling pipeline the typing surface drives.
	Input driving.InputHandler

	// Resolver gives re-roll access to the tiered pipeline. Optional;
	// without it the ctrl+r keybinding is disabled.
	Resolver driving.ResolverService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(input driving.InputHandler, resolver driving.ResolverService) *Ports {
	return &Ports{
		Input:    input,
		Resolver: resolver,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Input == nil {
		return ErrMissingInputHandler
	}
	return nil
}
