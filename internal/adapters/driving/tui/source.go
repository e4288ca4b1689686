package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// Document is one row of the monitor.
type Document struct {
	ID       string          `json:"id"`
	Timeline domain.Timeline `json:"timeline"`
	Live     bool            `json:"live"`
	Sessions int             `json:"sessions"`
	Shapes   int             `json:"shapes"`
}

// Source lists the documents open on a server.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// HTTPSource reads GET /documents of a running server.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// Ensure HTTPSource implements the interface.
var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source for the server at baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Documents fetches the live documents.
func (s *HTTPSource) Documents(ctx context.Context) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/documents", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s/documents: %s", s.baseURL, resp.Status)
	}

	var docs []Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	return docs, nil
}
