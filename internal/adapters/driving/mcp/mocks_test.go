package mcp

import (
	"context"

	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
)

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	data    []byte
	sticker []byte
	info    *driving.DocumentInfo
	err     error

	lastID string
}

func (m *mockExportService) Export(_ context.Context, publicID string) ([]byte, error) {
	m.lastID = publicID
	return m.data, m.err
}

func (m *mockExportService) Sticker(_ context.Context, publicID string) ([]byte, error) {
	m.lastID = publicID
	return m.sticker, m.err
}

func (m *mockExportService) Info(_ context.Context, publicID string) (*driving.DocumentInfo, error) {
	m.lastID = publicID
	return m.info, m.err
}

func (m *mockExportService) Live(_ context.Context) ([]*driving.DocumentInfo, error) {
	if m.info == nil {
		return nil, m.err
	}
	return []*driving.DocumentInfo{m.info}, m.err
}
