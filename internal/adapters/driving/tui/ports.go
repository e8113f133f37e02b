// Package tui is the full-screen terminal chat.
package tui

import (
	"errors"

	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

var ErrMissingAskService = errors.New("tui: ask service is required")

// Ports are the services the chat calls. Catalog only feeds the chunk
// count in the status bar and may be nil.
type Ports struct {
	Ask     driving.AskService
	Catalog driving.CatalogService
}

func (p *Ports) Validate() error {
	if p == nil || p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
