package driving

import (
	"context"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// Hub is the entry point for realtime sessions.
type Hub interface {
	// Connect opens the user's document for the session and replays its state.
	Connect(ctx context.Context, session *domain.Session) error

	// HandleEdit applies one edit command from the session.
	HandleEdit(ctx context.Context, session *domain.Session, cmd domain.Command) error

	// Save persists the session's document.
	Save(ctx context.Context, session *domain.Session) error

	// Disconnect removes the session and releases its document.
	Disconnect(ctx context.Context, session *domain.Session) error
}
