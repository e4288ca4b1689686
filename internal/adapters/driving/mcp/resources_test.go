package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid lottie URI", "glaximini://documents/k3nq/lottie", "k3nq"},
		{"invalid scheme", "file://documents/k3nq/lottie", ""},
		{"missing lottie suffix", "glaximini://documents/k3nq", ""},
		{"nested path", "glaximini://documents/a/b/lottie", ""},
		{"no id", "glaximini://documents/lottie", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleLottieResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns lottie JSON", func(t *testing.T) {
		export := &mockExportService{data: []byte(`{"layers":[]}`)}
		server := newTestServer(t, export)

		result, err := server.handleLottieResource(ctx, makeReadResourceRequest("glaximini://documents/k3nq/lottie"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Equal(t, `{"layers":[]}`, result.Contents[0].Text)
		assert.Equal(t, "k3nq", export.lastID)
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		server := newTestServer(t, &mockExportService{})

		_, err := server.handleLottieResource(ctx, makeReadResourceRequest("glaximini://invalid"))

		assert.Error(t, err)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		server := newTestServer(t, &mockExportService{err: domain.ErrNotFound})

		_, err := server.handleLottieResource(ctx, makeReadResourceRequest("glaximini://documents/zz/lottie"))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		server := newTestServer(t, &mockExportService{err: errors.New("disk")})

		_, err := server.handleLottieResource(ctx, makeReadResourceRequest("glaximini://documents/k3nq/lottie"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "exporting document")
	})
}
