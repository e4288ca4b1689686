// Package memory provides in-memory driven adapters, used by tests and by
// `glaximini serve --ephemeral`.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.DocumentTx    = (*documentTx)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Transactions run one at a time against a copy of the tables and replace
// them only when fn succeeds.
type DocumentStore struct {
	mu     sync.Mutex
	tables tables
	now    func() time.Time
}

type tables struct {
	nextDocumentID int64
	nextShapeID    int64
	nextLinkID     int64
	documents      map[int64]domain.DocumentRecord
	shapes         map[int64]domain.ShapeRecord
	keyframes      map[int64][]domain.KeyframeRecord
	links          map[userDocument]int64
}

type userDocument struct {
	userID     int64
	documentID int64
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		tables: tables{
			documents: make(map[int64]domain.DocumentRecord),
			shapes:    make(map[int64]domain.ShapeRecord),
			keyframes: make(map[int64][]domain.KeyframeRecord),
			links:     make(map[userDocument]int64),
		},
		now: time.Now,
	}
}

// Atomic runs fn against a snapshot and commits it if fn returns nil.
func (s *DocumentStore) Atomic(ctx context.Context, fn func(tx driven.DocumentTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &documentTx{t: s.tables.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.tables = tx.t
	return nil
}

// LatestForUser returns the document most recently linked to userID.
func (s *DocumentStore) LatestForUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		latest   int64
		latestID int64 = -1
	)
	for link, id := range s.tables.links {
		if link.userID == userID && id > latestID {
			latestID = id
			latest = link.documentID
		}
	}
	if latestID < 0 {
		return 0, domain.ErrNotFound
	}
	return latest, nil
}

// GetDocument retrieves a document row by id.
func (s *DocumentStore) GetDocument(_ context.Context, id int64) (*domain.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables.document(id)
}

func (t tables) clone() tables {
	out := t
	out.documents = make(map[int64]domain.DocumentRecord, len(t.documents))
	for k, v := range t.documents {
		out.documents[k] = v
	}
	out.shapes = make(map[int64]domain.ShapeRecord, len(t.shapes))
	for k, v := range t.shapes {
		out.shapes[k] = v
	}
	out.keyframes = make(map[int64][]domain.KeyframeRecord, len(t.keyframes))
	for k, v := range t.keyframes {
		out.keyframes[k] = append([]domain.KeyframeRecord(nil), v...)
	}
	out.links = make(map[userDocument]int64, len(t.links))
	for k, v := range t.links {
		out.links[k] = v
	}
	return out
}

func (t tables) document(id int64) (*domain.DocumentRecord, error) {
	rec, ok := t.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.Lottie = append([]byte(nil), rec.Lottie...)
	return &rec, nil
}

type documentTx struct {
	t   tables
	now func() time.Time
}

func (tx *documentTx) InsertDocument(_ context.Context, rec *domain.DocumentRecord) error {
	tx.t.nextDocumentID++
	now := tx.now()
	rec.ID = tx.t.nextDocumentID
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	stored.Lottie = append([]byte(nil), rec.Lottie...)
	tx.t.documents[rec.ID] = stored
	return nil
}

func (tx *documentTx) GetDocument(_ context.Context, id int64) (*domain.DocumentRecord, error) {
	return tx.t.document(id)
}

func (tx *documentTx) UpdateDocument(_ context.Context, rec domain.DocumentRecord) error {
	existing, ok := tx.t.documents[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.URL = rec.URL
	existing.Timeline = rec.Timeline
	existing.Lottie = append([]byte(nil), rec.Lottie...)
	existing.UpdatedAt = tx.now()
	tx.t.documents[rec.ID] = existing
	return nil
}

func (tx *documentTx) LinkUser(_ context.Context, userID, documentID int64) error {
	if _, ok := tx.t.documents[documentID]; !ok {
		return domain.ErrNotFound
	}
	key := userDocument{userID: userID, documentID: documentID}
	if _, ok := tx.t.links[key]; ok {
		return nil
	}
	tx.t.nextLinkID++
	tx.t.links[key] = tx.t.nextLinkID
	return nil
}

func (tx *documentTx) ListShapes(_ context.Context, documentID int64) ([]domain.ShapeRecord, error) {
	var out []domain.ShapeRecord
	for _, rec := range tx.t.shapes {
		if rec.DocumentID == documentID {
			out = append(out, copyShape(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *documentTx) UpdateShape(_ context.Context, rec domain.ShapeRecord) error {
	existing, ok := tx.t.shapes[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Props = rec.Props.Clone()
	existing.ParentID = copyString(rec.ParentID)
	existing.LastModified = rec.LastModified
	tx.t.shapes[rec.ID] = existing
	return nil
}

func (tx *documentTx) InsertShapes(_ context.Context, recs []domain.ShapeRecord) error {
	taken := make(map[string]bool)
	for _, rec := range tx.t.shapes {
		taken[shapeKey(rec.DocumentID, rec.PublicID)] = true
	}
	for _, rec := range recs {
		key := shapeKey(rec.DocumentID, rec.PublicID)
		if taken[key] {
			return domain.ErrInvalidInput
		}
		taken[key] = true

		tx.t.nextShapeID++
		rec = copyShape(rec)
		rec.ID = tx.t.nextShapeID
		tx.t.shapes[rec.ID] = rec
	}
	return nil
}

// DeleteShapes also drops the keyframes of the deleted rows.
func (tx *documentTx) DeleteShapes(_ context.Context, documentID int64, publicIDs []string) error {
	doomed := make(map[string]bool, len(publicIDs))
	for _, id := range publicIDs {
		doomed[id] = true
	}
	for id, rec := range tx.t.shapes {
		if rec.DocumentID == documentID && doomed[rec.PublicID] {
			delete(tx.t.shapes, id)
			delete(tx.t.keyframes, id)
		}
	}
	return nil
}

func (tx *documentTx) ShapeIDs(_ context.Context, documentID int64) (map[string]int64, error) {
	out := make(map[string]int64)
	for id, rec := range tx.t.shapes {
		if rec.DocumentID == documentID {
			out[rec.PublicID] = id
		}
	}
	return out, nil
}

func (tx *documentTx) ListKeyframes(_ context.Context, shapeIDs []int64) ([]domain.KeyframeRecord, error) {
	var out []domain.KeyframeRecord
	for _, id := range shapeIDs {
		for _, kf := range tx.t.keyframes[id] {
			kf.Props = kf.Props.Clone()
			out = append(out, kf)
		}
	}
	return out, nil
}

func (tx *documentTx) DeleteKeyframes(_ context.Context, shapeIDs []int64) error {
	for _, id := range shapeIDs {
		delete(tx.t.keyframes, id)
	}
	return nil
}

func (tx *documentTx) InsertKeyframes(_ context.Context, recs []domain.KeyframeRecord) error {
	for _, rec := range recs {
		if _, ok := tx.t.shapes[rec.ShapeID]; !ok {
			return domain.ErrNotFound
		}
		rec.Props = rec.Props.Clone()
		tx.t.keyframes[rec.ShapeID] = append(tx.t.keyframes[rec.ShapeID], rec)
	}
	return nil
}

func copyShape(rec domain.ShapeRecord) domain.ShapeRecord {
	rec.Props = rec.Props.Clone()
	rec.ParentID = copyString(rec.ParentID)
	return rec
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func shapeKey(documentID int64, publicID string) string {
	return strconv.FormatInt(documentID, 10) + "/" + publicID
}
