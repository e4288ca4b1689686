package driving

import (
	"context"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// ExportService gives read access to documents outside of a session.
type ExportService interface {
	// Export returns the encoded animation of a document.
	Export(ctx context.Context, publicID string) ([]byte, error)

	// Sticker returns the compressed sticker payload of a document.
	Sticker(ctx context.Context, publicID string) ([]byte, error)

	// Info describes a document.
	Info(ctx context.Context, publicID string) (*DocumentInfo, error)

	// Live describes every document open in this process.
	Live(ctx context.Context) ([]*DocumentInfo, error)
}

// DocumentInfo is a summary of one document.
type DocumentInfo struct {
	// PublicID is the client visible id.
	PublicID string

	// Timeline holds dimensions and frame range.
	Timeline domain.Timeline

	// Live is true when the document is open in this process.
	Live bool

	// Sessions is the number of open sessions, zero when not live.
	Sessions int

	// Shapes is the number of alive shapes, zero when not live.
	Shapes int
}
