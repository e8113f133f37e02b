// Package mcp serves medibot over the Model Context Protocol: an ask tool
// for assistants and the ingested documents as browsable resources.
package mcp

import (
	"errors"

	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

var ErrMissingAskService = errors.New("mcp: ask service is required")

// Ports are the services the server calls. Without Catalog no resources
// are registered.
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
