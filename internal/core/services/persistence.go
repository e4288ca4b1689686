package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
	"github.com/custodia-labs/glaximini/internal/exporter"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// Persistence moves documents between memory and the document store.
type Persistence struct {
	store   driven.DocumentStore
	codec   driven.IDCodec
	encoder driven.AnimationEncoder
}

// NewPersistence creates a persistence service.
func NewPersistence(store driven.DocumentStore, codec driven.IDCodec, encoder driven.AnimationEncoder) *Persistence {
	return &Persistence{
		store:   store,
		codec:   codec,
		encoder: encoder,
	}
}

// Create stores a new empty document owned by userID.
func (p *Persistence) Create(ctx context.Context, userID int64, timeline domain.Timeline) (*domain.Document, error) {
	rec := &domain.DocumentRecord{Timeline: timeline}
	err := p.store.Atomic(ctx, func(tx driven.DocumentTx) error {
		if err := tx.InsertDocument(ctx, rec); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if err := tx.LinkUser(ctx, userID, rec.ID); err != nil {
			return fmt.Errorf("link user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("created document %d for user %d", rec.ID, userID)
	return domain.NewDocument(rec.ID, p.codec.Encode(rec.ID), timeline), nil
}

// LoadLatest loads the document most recently associated with userID.
// It returns domain.ErrNotFound when the user has none.
func (p *Persistence) LoadLatest(ctx context.Context, userID int64) (*domain.Document, error) {
	id, err := p.store.LatestForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Load(ctx, id)
}

// Load rebuilds a document from its rows. Shapes are created first and
// linked to their parents in a second pass, since a row may name a parent
// stored after it.
func (p *Persistence) Load(ctx context.Context, id int64) (*domain.Document, error) {
	var doc *domain.Document

	err := p.store.Atomic(ctx, func(tx driven.DocumentTx) error {
		rec, err := tx.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("get document: %w", err)
		}
		doc = domain.NewDocument(rec.ID, p.codec.Encode(rec.ID), rec.Timeline)
		doc.URL = rec.URL

		rows, err := tx.ListShapes(ctx, id)
		if err != nil {
			return fmt.Errorf("list shapes: %w", err)
		}

		byRow := make(map[int64]*domain.Shape, len(rows))
		rowIDs := make([]int64, 0, len(rows))
		for _, row := range rows {
			s := domain.NewShape(row.PublicID, row.Kind, row.Props)
			s.LastModified = row.LastModified
			doc.AddShape(s)
			byRow[row.ID] = s
			rowIDs = append(rowIDs, row.ID)
		}

		for _, row := range rows {
			if row.ParentID == nil {
				continue
			}
			child, _ := doc.Shape(row.PublicID)
			parent, ok := doc.Shape(*row.ParentID)
			if !ok {
				logger.Warn("document %d: shape %s has unknown parent %s", id, row.PublicID, *row.ParentID)
				continue
			}
			child.SetParent(parent)
		}

		keyframes, err := tx.ListKeyframes(ctx, rowIDs)
		if err != nil {
			return fmt.Errorf("list keyframes: %w", err)
		}
		for _, kf := range keyframes {
			if s, ok := byRow[kf.ShapeID]; ok {
				s.SetKeyframe(kf.Time, kf.Props)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded document %s with %d shapes", doc.PublicID, len(doc.Shapes()))
	return doc, nil
}

// Save writes doc in one transaction. Rows of shapes that are no longer
// alive are removed, keyframe rows are rewritten from scratch. A failed save
// leaves both the rows and doc untouched.
//
//nolint:gocyclo // Sequential diff steps
func (p *Persistence) Save(ctx context.Context, doc *domain.Document) error {
	// 1. Recompile so the stored export matches the stored shapes
	anim := exporter.Compile(doc)
	doc.SetCachedExport(anim)
	lottie, err := p.encoder.Encode(anim)
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	err = p.store.Atomic(ctx, func(tx driven.DocumentTx) error {
		// 2. Document fields
		rec := domain.DocumentRecord{
			ID:       doc.ID,
			URL:      doc.URL,
			Timeline: doc.Timeline,
			Lottie:   lottie,
		}
		if err := tx.UpdateDocument(ctx, rec); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		// 3. Existing rows: update alive shapes, queue the rest for deletion
		rows, err := tx.ListShapes(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("list shapes: %w", err)
		}
		stored := make(map[string]bool, len(rows))
		var deletes []string
		for _, row := range rows {
			stored[row.PublicID] = true
			s, ok := doc.Shape(row.PublicID)
			if !ok || !s.Alive() {
				deletes = append(deletes, row.PublicID)
				continue
			}
			if err := tx.UpdateShape(ctx, shapeRecord(doc.ID, row.ID, s)); err != nil {
				return fmt.Errorf("update shape %s: %w", s.ID, err)
			}
		}

		// 4. Alive shapes without a row
		alive := doc.AliveShapes()
		var inserts []domain.ShapeRecord
		for _, s := range alive {
			if !stored[s.ID] {
				inserts = append(inserts, shapeRecord(doc.ID, 0, s))
			}
		}

		// 5. Bulk insert, then bulk delete
		if len(inserts) > 0 {
			if err := tx.InsertShapes(ctx, inserts); err != nil {
				return fmt.Errorf("insert shapes: %w", err)
			}
		}
		if len(deletes) > 0 {
			if err := tx.DeleteShapes(ctx, doc.ID, deletes); err != nil {
				return fmt.Errorf("delete shapes: %w", err)
			}
		}

		// 6. Row ids of the alive shapes
		ids, err := tx.ShapeIDs(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("resolve shape ids: %w", err)
		}
		rowIDs := make([]int64, 0, len(alive))
		var keyframes []domain.KeyframeRecord
		for _, s := range alive {
			rowID, ok := ids[s.ID]
			if !ok {
				return fmt.Errorf("shape %s has no row after insert", s.ID)
			}
			rowIDs = append(rowIDs, rowID)
			for _, kf := range s.SortedKeyframes() {
				keyframes = append(keyframes, domain.KeyframeRecord{ShapeID: rowID, Time: kf.Time, Props: kf.Props})
			}
		}

		// 7. Replace every keyframe row
		if err := tx.DeleteKeyframes(ctx, rowIDs); err != nil {
			return fmt.Errorf("delete keyframes: %w", err)
		}
		if len(keyframes) > 0 {
			if err := tx.InsertKeyframes(ctx, keyframes); err != nil {
				return fmt.Errorf("insert keyframes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.PublicID, err)
	}

	logger.Info("saved document %s", doc.PublicID)
	return nil
}

// Record returns the stored row of a document by public id.
func (p *Persistence) Record(ctx context.Context, publicID string) (*domain.DocumentRecord, error) {
	id, err := p.codec.Decode(publicID)
	if err != nil {
		return nil, err
	}
	rec, err := p.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", publicID, err)
		}
		return nil, fmt.Errorf("get document %s: %w", publicID, err)
	}
	return rec, nil
}

func shapeRecord(documentID, rowID int64, s *domain.Shape) domain.ShapeRecord {
	rec := domain.ShapeRecord{
		ID:           rowID,
		DocumentID:   documentID,
		PublicID:     s.ID,
		Kind:         s.Kind,
		Props:        s.Props,
		LastModified: s.LastModified,
	}
	if parent := s.Parent(); parent != nil {
		id := parent.ID
		rec.ParentID = &id
	}
	return rec
}
