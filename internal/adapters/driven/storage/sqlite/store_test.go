package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "glaximini-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestDocument inserts a document and links it to userID.
func createTestDocument(t *testing.T, docs driven.DocumentStore, userID int64) int64 {
	t.Helper()
	ctx := context.Background()
	rec := &domain.DocumentRecord{URL: "https://example.com/a.svg", Timeline: domain.DefaultTimeline()}
	err := docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		if err := tx.InsertDocument(ctx, rec); err != nil {
			return err
		}
		return tx.LinkUser(ctx, userID, rec.ID)
	})
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	return rec.ID
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, dbFile, filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)

	v, err := store.version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	v, err := store.version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	var applied int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	id := createTestDocument(t, store.DocumentStore(), 1)
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	rec, err := store.DocumentStore().GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.svg", rec.URL)
}

// ==================== Document Tests ====================

func TestDocumentStore_InsertAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()

	id := createTestDocument(t, docs, 1)

	rec, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimeline(), rec.Timeline)
	assert.Nil(t, rec.Lottie)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = docs.GetDocument(ctx, id+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_UpdateDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, docs, 1)

	timeline := domain.Timeline{Width: 100, Height: 200, FPS: 30, Duration: 90, Start: 10}
	err := docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.UpdateDocument(ctx, domain.DocumentRecord{ID: id, Timeline: timeline, Lottie: []byte(`{"v":1}`)})
	})
	require.NoError(t, err)

	rec, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timeline, rec.Timeline)
	assert.Equal(t, `{"v":1}`, string(rec.Lottie))

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.UpdateDocument(ctx, domain.DocumentRecord{ID: id + 100})
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_LatestForUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()

	_, err := docs.LatestForUser(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first := createTestDocument(t, docs, 1)
	second := createTestDocument(t, docs, 1)
	createTestDocument(t, docs, 2)

	latest, err := docs.LatestForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.LinkUser(ctx, 1, first)
	})
	require.NoError(t, err)
	latest, err = docs.LatestForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second, latest, "existing links are not refreshed")
}

// ==================== Shape and Keyframe Tests ====================

func TestDocumentStore_ShapeRows(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()
	docID := createTestDocument(t, docs, 1)
	group := "g"

	err := docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.InsertShapes(ctx, []domain.ShapeRecord{
			{DocumentID: docID, PublicID: "r", Kind: domain.KindRectangle, ParentID: &group,
				Props: domain.Props{"width": 10.0, "fill": "#ff0000"}, LastModified: 3},
			{DocumentID: docID, PublicID: "g", Kind: domain.KindGroup},
		})
	})
	require.NoError(t, err)

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		shapes, err := tx.ListShapes(ctx, docID)
		require.NoError(t, err)
		require.Len(t, shapes, 2)

		r := shapes[0]
		assert.Equal(t, "r", r.PublicID)
		assert.Equal(t, domain.KindRectangle, r.Kind)
		assert.Equal(t, domain.Props{"width": 10.0, "fill": "#ff0000"}, r.Props)
		require.NotNil(t, r.ParentID)
		assert.Equal(t, "g", *r.ParentID)
		assert.Equal(t, 3.0, r.LastModified)

		g := shapes[1]
		assert.Nil(t, g.ParentID)
		assert.Equal(t, domain.Props{}, g.Props)

		r.Props = domain.Props{"width": 20.0}
		r.ParentID = nil
		r.LastModified = 4
		require.NoError(t, tx.UpdateShape(ctx, r))

		ids, err := tx.ShapeIDs(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"r": r.ID, "g": g.ID}, ids)
		return nil
	})
	require.NoError(t, err)

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		shapes, err := tx.ListShapes(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, domain.Props{"width": 20.0}, shapes[0].Props)
		assert.Nil(t, shapes[0].ParentID)
		assert.Equal(t, 4.0, shapes[0].LastModified)
		return nil
	})
	require.NoError(t, err)
}

func TestDocumentStore_DuplicatePublicID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()
	docID := createTestDocument(t, docs, 1)
	other := createTestDocument(t, docs, 2)

	err := docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.InsertShapes(ctx, []domain.ShapeRecord{
			{DocumentID: docID, PublicID: "a", Kind: domain.KindEllipse},
			{DocumentID: other, PublicID: "a", Kind: domain.KindEllipse},
		})
	})
	require.NoError(t, err, "public ids are scoped per document")

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.InsertShapes(ctx, []domain.ShapeRecord{
			{DocumentID: docID, PublicID: "a", Kind: domain.KindEllipse},
		})
	})
	assert.Error(t, err)
}

func TestDocumentStore_KeyframesCascadeWithShapes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()
	docID := createTestDocument(t, docs, 1)

	var ids map[string]int64
	err := docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		require.NoError(t, tx.InsertShapes(ctx, []domain.ShapeRecord{
			{DocumentID: docID, PublicID: "a", Kind: domain.KindEllipse},
			{DocumentID: docID, PublicID: "b", Kind: domain.KindEllipse},
		}))
		var err error
		ids, err = tx.ShapeIDs(ctx, docID)
		require.NoError(t, err)
		return tx.InsertKeyframes(ctx, []domain.KeyframeRecord{
			{ShapeID: ids["a"], Time: 30, Props: domain.Props{"rx": 2.0}},
			{ShapeID: ids["a"], Time: 0},
			{ShapeID: ids["b"], Time: 5, Props: domain.Props{"ry": 1.0}},
		})
	})
	require.NoError(t, err)

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		kfs, err := tx.ListKeyframes(ctx, []int64{ids["a"], ids["b"]})
		require.NoError(t, err)
		require.Len(t, kfs, 3)
		assert.Equal(t, 0.0, kfs[0].Time)
		assert.Equal(t, domain.Props{}, kfs[0].Props)
		assert.Equal(t, 30.0, kfs[1].Time)

		require.NoError(t, tx.DeleteShapes(ctx, docID, []string{"b"}))
		kfs, err = tx.ListKeyframes(ctx, []int64{ids["b"]})
		require.NoError(t, err)
		assert.Empty(t, kfs)

		require.NoError(t, tx.DeleteKeyframes(ctx, []int64{ids["a"]}))
		kfs, err = tx.ListKeyframes(ctx, []int64{ids["a"]})
		require.NoError(t, err)
		assert.Empty(t, kfs)

		assert.NoError(t, tx.DeleteKeyframes(ctx, nil))
		assert.NoError(t, tx.DeleteShapes(ctx, docID, nil))
		return nil
	})
	require.NoError(t, err)
}

func TestDocumentStore_AtomicRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	docs := store.DocumentStore()
	ctx := context.Background()
	docID := createTestDocument(t, docs, 1)
	boom := errors.New("boom")

	err := docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		require.NoError(t, tx.InsertShapes(ctx, []domain.ShapeRecord{
			{DocumentID: docID, PublicID: "a", Kind: domain.KindEllipse},
		}))
		require.NoError(t, tx.UpdateDocument(ctx, domain.DocumentRecord{ID: docID, Lottie: []byte("x")}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = docs.Atomic(ctx, func(tx driven.DocumentTx) error {
		shapes, err := tx.ListShapes(ctx, docID)
		require.NoError(t, err)
		assert.Empty(t, shapes)
		return nil
	})
	require.NoError(t, err)

	rec, err := docs.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Nil(t, rec.Lottie)
}
