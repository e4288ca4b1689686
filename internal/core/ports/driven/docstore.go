package driven

import (
	"context"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// DocumentStore persists documents over three tables (documents, shapes,
// keyframes) plus the user_documents association.
type DocumentStore interface {
	// Atomic runs fn in a single transaction. If fn returns an error nothing
	// fn wrote is visible afterwards.
	Atomic(ctx context.Context, fn func(tx DocumentTx) error) error

	// LatestForUser returns the id of the document most recently associated
	// with userID, or domain.ErrNotFound.
	LatestForUser(ctx context.Context, userID int64) (int64, error)

	// GetDocument retrieves a document row by id.
	GetDocument(ctx context.Context, id int64) (*domain.DocumentRecord, error)
}

// DocumentTx is the set of row operations available inside Atomic.
type DocumentTx interface {
	// InsertDocument creates a document row and sets rec.ID.
	InsertDocument(ctx context.Context, rec *domain.DocumentRecord) error

	// GetDocument retrieves a document row by id.
	GetDocument(ctx context.Context, id int64) (*domain.DocumentRecord, error)

	// UpdateDocument overwrites the scalar fields and Lottie cache of a row.
	UpdateDocument(ctx context.Context, rec domain.DocumentRecord) error

	// LinkUser associates userID with documentID if not already associated.
	LinkUser(ctx context.Context, userID, documentID int64) error

	// ListShapes returns every shape row of a document ordered by row id.
	ListShapes(ctx context.Context, documentID int64) ([]domain.ShapeRecord, error)

	// UpdateShape overwrites props, parent and last_modified of one row.
	UpdateShape(ctx context.Context, rec domain.ShapeRecord) error

	// InsertShapes bulk inserts shape rows.
	InsertShapes(ctx context.Context, recs []domain.ShapeRecord) error

	// DeleteShapes bulk deletes the rows of a document whose public id is listed.
	DeleteShapes(ctx context.Context, documentID int64, publicIDs []string) error

	// ShapeIDs maps public id to row id for every shape row of a document.
	ShapeIDs(ctx context.Context, documentID int64) (map[string]int64, error)

	// ListKeyframes returns the keyframe rows of the given shape rows.
	ListKeyframes(ctx context.Context, shapeIDs []int64) ([]domain.KeyframeRecord, error)

	// DeleteKeyframes bulk deletes every keyframe row of the given shape rows.
	DeleteKeyframes(ctx context.Context, shapeIDs []int64) error

	// InsertKeyframes bulk inserts keyframe rows.
	InsertKeyframes(ctx context.Context, recs []domain.KeyframeRecord) error
}
