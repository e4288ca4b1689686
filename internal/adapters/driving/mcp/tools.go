package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Export formats.
const (
	FormatLottie  = "lottie"
	FormatSticker = "sticker"
)

// DocumentInput selects a document by its public id.
type DocumentInput struct {
	ID string `json:"id" jsonschema:"the public id of the document, as shown in the editor URL"`
}

// DocumentInfoOutput is the output schema for the document_info tool.
type DocumentInfoOutput struct {
	ID       string  `json:"id"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Duration float64 `json:"duration"`
	Start    float64 `json:"start"`
	Live     bool    `json:"live"`
	Sessions int     `json:"sessions"`
	Shapes   int     `json:"shapes"`
}

// ExportInput is the input schema for the export_document tool.
type ExportInput struct {
	ID     string `json:"id" jsonschema:"the public id of the document"`
	Format string `json:"format,omitempty" jsonschema:"lottie (default) or sticker"`
}

// ExportOutput is the output schema for the export_document tool.
type ExportOutput struct {
	Format string `json:"format"`
	// Lottie is the animation JSON, set for the lottie format.
	Lottie string `json:"lottie,omitempty"`
	// Sticker is the base64 encoded .tgs payload, set for the sticker format.
	Sticker string `json:"sticker,omitempty"`
	Bytes   int    `json:"bytes"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_info",
		Description: "Describe an animation document: canvas size, frame rate, duration and whether it is being edited",
	}, s.handleDocumentInfo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_document",
		Description: "Export an animation document as Lottie JSON or as a Telegram sticker",
	}, s.handleExport)
}

func (s *Server) handleDocumentInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentInfoOutput, error) {
	info, err := s.ports.Export.Info(ctx, input.ID)
	if err != nil {
		return nil, DocumentInfoOutput{}, err
	}

	return nil, DocumentInfoOutput{
		ID:       info.PublicID,
		Width:    info.Timeline.Width,
		Height:   info.Timeline.Height,
		FPS:      info.Timeline.FPS,
		Duration: info.Timeline.Duration,
		Start:    info.Timeline.Start,
		Live:     info.Live,
		Sessions: info.Sessions,
		Shapes:   info.Shapes,
	}, nil
}

func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	switch input.Format {
	case "", FormatLottie:
		data, err := s.ports.Export.Export(ctx, input.ID)
		if err != nil {
			return nil, ExportOutput{}, err
		}
		return nil, ExportOutput{Format: FormatLottie, Lottie: string(data), Bytes: len(data)}, nil

	case FormatSticker:
		data, err := s.ports.Export.Sticker(ctx, input.ID)
		if err != nil {
			return nil, ExportOutput{}, err
		}
		return nil, ExportOutput{
			Format:  FormatSticker,
			Sticker: base64.StdEncoding.EncodeToString(data),
			Bytes:   len(data),
		}, nil

	default:
		return nil, ExportOutput{}, fmt.Errorf("unknown format %q, want %s or %s", input.Format, FormatLottie, FormatSticker)
	}
}
