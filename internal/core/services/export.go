package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
	"github.com/custodia-labs/glaximini/internal/exporter"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService serves compiled documents outside of a realtime session.
// Live documents are exported from memory, others from storage.
type ExportService struct {
	registry    *Registry
	persistence *Persistence
	encoder     driven.AnimationEncoder
}

// NewExportService creates an export service. registry may be nil when no
// server runs in this process.
func NewExportService(registry *Registry, persistence *Persistence, encoder driven.AnimationEncoder) *ExportService {
	return &ExportService{
		registry:    registry,
		persistence: persistence,
		encoder:     encoder,
	}
}

// Export returns the encoded animation of a document.
func (s *ExportService) Export(ctx context.Context, publicID string) ([]byte, error) {
	if doc, ok := s.live(publicID); ok {
		doc.Lock()
		anim := exporter.Cached(doc)
		doc.Unlock()
		return s.encode(anim)
	}

	rec, err := s.persistence.Record(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if len(rec.Lottie) > 0 {
		return rec.Lottie, nil
	}

	// Never saved since creation: compile from the stored rows.
	doc, err := s.persistence.Load(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", publicID, err)
	}
	return s.encode(exporter.Compile(doc))
}

// Sticker returns the compressed sticker payload of a document.
func (s *ExportService) Sticker(ctx context.Context, publicID string) ([]byte, error) {
	data, err := s.Export(ctx, publicID)
	if err != nil {
		return nil, err
	}
	out, err := s.encoder.Sticker(data)
	if err != nil {
		return nil, fmt.Errorf("build sticker: %w", err)
	}
	return out, nil
}

// Info describes a document.
func (s *ExportService) Info(ctx context.Context, publicID string) (*driving.DocumentInfo, error) {
	if doc, ok := s.live(publicID); ok {
		doc.Lock()
		defer doc.Unlock()
		return liveInfo(doc), nil
	}

	rec, err := s.persistence.Record(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentInfo{
		PublicID: publicID,
		Timeline: rec.Timeline,
	}, nil
}

// Live describes every document open in this process.
func (s *ExportService) Live(_ context.Context) ([]*driving.DocumentInfo, error) {
	if s.registry == nil {
		return nil, nil
	}

	docs := s.registry.Documents()
	infos := make([]*driving.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		doc.Lock()
		infos = append(infos, liveInfo(doc))
		doc.Unlock()
	}
	return infos, nil
}

func liveInfo(doc *domain.Document) *driving.DocumentInfo {
	return &driving.DocumentInfo{
		PublicID: doc.PublicID,
		Timeline: doc.Timeline,
		Live:     true,
		Sessions: len(doc.Sessions()),
		Shapes:   len(doc.AliveShapes()),
	}
}

func (s *ExportService) live(publicID string) (*domain.Document, bool) {
	if s.registry == nil {
		return nil, false
	}
	return s.registry.Lookup(publicID)
}

func (s *ExportService) encode(anim *domain.Animation) ([]byte, error) {
	data, err := s.encoder.Encode(anim)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}
