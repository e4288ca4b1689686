package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
)

// querier is the subset of *sql.DB and *sql.Tx used by the row helpers.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var (
	_ driven.DocumentStore = (*documentStore)(nil)
	_ driven.DocumentTx    = (*documentTx)(nil)
)

// Atomic runs fn inside one transaction and commits only if fn succeeds.
func (s *documentStore) Atomic(ctx context.Context, fn func(tx driven.DocumentTx) error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&documentTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LatestForUser returns the document most recently linked to userID.
func (s *documentStore) LatestForUser(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT document_id FROM user_documents
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, userID).Scan(&id)
	if err != nil {
		return 0, notFound(err, "user document")
	}
	return id, nil
}

// GetDocument retrieves a document row by id.
func (s *documentStore) GetDocument(ctx context.Context, id int64) (*domain.DocumentRecord, error) {
	return getDocument(ctx, s.store.db, id)
}

// documentTx implements driven.DocumentTx over a *sql.Tx.
type documentTx struct {
	tx *sql.Tx
}

func (t *documentTx) InsertDocument(ctx context.Context, rec *domain.DocumentRecord) error {
	now := time.Now().UTC()
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO documents (url, width, height, fps, duration, start_frame, lottie, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.URL, rec.Timeline.Width, rec.Timeline.Height, rec.Timeline.FPS,
		rec.Timeline.Duration, rec.Timeline.Start, rec.Lottie, now, now)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

func (t *documentTx) GetDocument(ctx context.Context, id int64) (*domain.DocumentRecord, error) {
	return getDocument(ctx, t.tx, id)
}

func (t *documentTx) UpdateDocument(ctx context.Context, rec domain.DocumentRecord) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE documents SET
			url = ?, width = ?, height = ?, fps = ?, duration = ?, start_frame = ?,
			lottie = ?, updated_at = ?
		WHERE id = ?
	`, rec.URL, rec.Timeline.Width, rec.Timeline.Height, rec.Timeline.FPS,
		rec.Timeline.Duration, rec.Timeline.Start, rec.Lottie, time.Now().UTC(), rec.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *documentTx) LinkUser(ctx context.Context, userID, documentID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO user_documents (user_id, document_id)
		VALUES (?, ?)
		ON CONFLICT(user_id, document_id) DO NOTHING
	`, userID, documentID)
	if err != nil {
		return fmt.Errorf("linking user %d: %w", userID, err)
	}
	return nil
}

func (t *documentTx) ListShapes(ctx context.Context, documentID int64) ([]domain.ShapeRecord, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, document_id, public_id, kind, props, parent_id, last_modified
		FROM shapes WHERE document_id = ?
		ORDER BY id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying shapes: %w", err)
	}
	defer rows.Close()

	var shapes []domain.ShapeRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			rec       domain.ShapeRecord
			kind      string
			propsJSON string
			parentID  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.PublicID, &kind,
			&propsJSON, &parentID, &rec.LastModified); err != nil {
			return nil, fmt.Errorf("scanning shape: %w", err)
		}
		rec.Kind = domain.ShapeKind(kind)
		if parentID.Valid {
			rec.ParentID = &parentID.String
		}
		if rec.Props, err = unmarshalProps(propsJSON); err != nil {
			return nil, fmt.Errorf("shape %s: %w", rec.PublicID, err)
		}
		shapes = append(shapes, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shapes: %w", err)
	}
	return shapes, nil
}

func (t *documentTx) UpdateShape(ctx context.Context, rec domain.ShapeRecord) error {
	propsJSON, err := marshalProps(rec.Props)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		UPDATE shapes SET props = ?, parent_id = ?, last_modified = ?
		WHERE id = ?
	`, propsJSON, nullString(rec.ParentID), rec.LastModified, rec.ID)
	if err != nil {
		return fmt.Errorf("updating shape %s: %w", rec.PublicID, err)
	}
	return nil
}

func (t *documentTx) InsertShapes(ctx context.Context, recs []domain.ShapeRecord) error {
	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO shapes (document_id, public_id, kind, props, parent_id, last_modified)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		propsJSON, err := marshalProps(rec.Props)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.DocumentID, rec.PublicID, string(rec.Kind),
			propsJSON, nullString(rec.ParentID), rec.LastModified); err != nil {
			return fmt.Errorf("inserting shape %s: %w", rec.PublicID, err)
		}
	}
	return nil
}

// DeleteShapes removes rows by public id. Their keyframes go with them
// through ON DELETE CASCADE.
func (t *documentTx) DeleteShapes(ctx context.Context, documentID int64, publicIDs []string) error {
	if len(publicIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(publicIDs)+1)
	args = append(args, documentID)
	for _, id := range publicIDs {
		args = append(args, id)
	}

	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM shapes WHERE document_id = ? AND public_id IN ("+placeholders(len(publicIDs))+")",
		args...)
	if err != nil {
		return fmt.Errorf("deleting shapes: %w", err)
	}
	return nil
}

func (t *documentTx) ShapeIDs(ctx context.Context, documentID int64) (map[string]int64, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT public_id, id FROM shapes WHERE document_id = ?", documentID)
	if err != nil {
		return nil, fmt.Errorf("querying shape ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			publicID string
			id       int64
		)
		if err := rows.Scan(&publicID, &id); err != nil {
			return nil, fmt.Errorf("scanning shape id: %w", err)
		}
		ids[publicID] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shape ids: %w", err)
	}
	return ids, nil
}

func (t *documentTx) ListKeyframes(ctx context.Context, shapeIDs []int64) ([]domain.KeyframeRecord, error) {
	if len(shapeIDs) == 0 {
		return nil, nil
	}
	rows, err := t.tx.QueryContext(ctx,
		"SELECT shape_id, time, props FROM keyframes WHERE shape_id IN ("+placeholders(len(shapeIDs))+") ORDER BY shape_id, time",
		int64Args(shapeIDs)...)
	if err != nil {
		return nil, fmt.Errorf("querying keyframes: %w", err)
	}
	defer rows.Close()

	var keyframes []domain.KeyframeRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			rec       domain.KeyframeRecord
			propsJSON string
		)
		if err := rows.Scan(&rec.ShapeID, &rec.Time, &propsJSON); err != nil {
			return nil, fmt.Errorf("scanning keyframe: %w", err)
		}
		if rec.Props, err = unmarshalProps(propsJSON); err != nil {
			return nil, fmt.Errorf("keyframe %d@%v: %w", rec.ShapeID, rec.Time, err)
		}
		keyframes = append(keyframes, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keyframes: %w", err)
	}
	return keyframes, nil
}

func (t *documentTx) DeleteKeyframes(ctx context.Context, shapeIDs []int64) error {
	if len(shapeIDs) == 0 {
		return nil
	}
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM keyframes WHERE shape_id IN ("+placeholders(len(shapeIDs))+")",
		int64Args(shapeIDs)...)
	if err != nil {
		return fmt.Errorf("deleting keyframes: %w", err)
	}
	return nil
}

func (t *documentTx) InsertKeyframes(ctx context.Context, recs []domain.KeyframeRecord) error {
	stmt, err := t.tx.PrepareContext(ctx, "INSERT INTO keyframes (shape_id, time, props) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		propsJSON, err := marshalProps(rec.Props)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.ShapeID, rec.Time, propsJSON); err != nil {
			return fmt.Errorf("inserting keyframe %d@%v: %w", rec.ShapeID, rec.Time, err)
		}
	}
	return nil
}

func getDocument(ctx context.Context, q querier, id int64) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	err := q.QueryRowContext(ctx, `
		SELECT id, url, width, height, fps, duration, start_frame, lottie, created_at, updated_at
		FROM documents WHERE id = ?
	`, id).Scan(&rec.ID, &rec.URL, &rec.Timeline.Width, &rec.Timeline.Height, &rec.Timeline.FPS,
		&rec.Timeline.Duration, &rec.Timeline.Start, &rec.Lottie, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "document")
	}
	return &rec, nil
}

func marshalProps(p domain.Props) (string, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshalling props: %w", err)
	}
	return string(data), nil
}

func unmarshalProps(s string) (domain.Props, error) {
	props := domain.Props{}
	if s == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, fmt.Errorf("unmarshalling props: %w", err)
	}
	if props == nil {
		props = domain.Props{}
	}
	return props, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
