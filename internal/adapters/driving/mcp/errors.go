// Package mcp provides an MCP (Model Context Protocol) server adapter for
// glaximini. It lets AI assistants inspect and export animation documents.
package mcp

import "errors"

// ErrMissingExportService is returned when the export service is not provided.
var ErrMissingExportService = errors.New("mcp: export service is required")
