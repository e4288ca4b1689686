package mcp

import (
	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Export reads documents and their compiled animations.
	Export driving.ExportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Export == nil {
		return ErrMissingExportService
	}
	return nil
}
