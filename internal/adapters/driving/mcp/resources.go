package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for glaximini resources.
	uriScheme = "glaximini://"

	lottieSuffix = "/lottie"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/lottie",
		Name:        "document-lottie",
		Description: "Lottie JSON of an animation document",
		MIMEType:    "application/json",
	}, s.handleLottieResource)
}

// handleLottieResource returns the compiled animation of a document.
func (s *Server) handleLottieResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := s.ports.Export.Export(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("exporting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the id from a URI like glaximini://documents/{documentId}/lottie.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	rest := strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(rest, lottieSuffix) {
		return ""
	}

	id := strings.TrimSuffix(rest, lottieSuffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
