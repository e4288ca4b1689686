package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// Ensure Hub implements the interface.
var _ driving.Hub = (*Hub)(nil)

// Hub runs the life of a realtime session. Every handler holds the document
// lock for its whole duration, so handlers on one document never interleave.
type Hub struct {
	registry    *Registry
	sync        *SyncProtocol
	editor      *Editor
	persistence *Persistence
}

// NewHub creates a hub.
func NewHub(registry *Registry, sync *SyncProtocol, editor *Editor, persistence *Persistence) *Hub {
	return &Hub{
		registry:    registry,
		sync:        sync,
		editor:      editor,
		persistence: persistence,
	}
}

// Connect opens the user's document and joins the session to it.
func (h *Hub) Connect(ctx context.Context, session *domain.Session) error {
	if session.Document != nil {
		return fmt.Errorf("%w: session %s already joined %s", domain.ErrInvalidInput, session.ID, session.Document.PublicID)
	}

	doc, err := h.registry.Acquire(ctx, session.User)
	if err != nil {
		return err
	}

	doc.Lock()
	err = h.sync.Join(ctx, session, doc)
	if err != nil {
		h.sync.Leave(ctx, session, doc)
	}
	doc.Unlock()

	if err != nil {
		if relErr := h.registry.Release(ctx, doc); relErr != nil {
			logger.Warn("release after failed join: %v", relErr)
		}
		return fmt.Errorf("join document %s: %w", doc.PublicID, err)
	}
	return nil
}

// HandleEdit applies cmd. A rejected shape.edit answers the sender with the
// authoritative state of each conflicting shape; an applied command is
// relayed to every other session.
func (h *Hub) HandleEdit(ctx context.Context, session *domain.Session, cmd domain.Command) error {
	doc := session.Document
	if doc == nil {
		return domain.ErrNoDocument
	}

	doc.Lock()
	defer doc.Unlock()

	out := h.editor.Apply(doc, cmd)

	if len(out.Conflicts) > 0 {
		logger.Debug("%s from session %s rejected: %d conflicts", cmd.Kind(), session.ID, len(out.Conflicts))
		for _, s := range out.Conflicts {
			if err := session.Send(ctx, domain.NewEditMessage(correction(s))); err != nil {
				return fmt.Errorf("send correction for %s: %w", s.ID, err)
			}
		}
		return nil
	}

	if out.Applied {
		h.sync.Broadcast(ctx, doc, session, domain.NewEditMessage(cmd))
	}
	return nil
}

// Save persists the session's document.
func (h *Hub) Save(ctx context.Context, session *domain.Session) error {
	doc := session.Document
	if doc == nil {
		return domain.ErrNoDocument
	}

	doc.Lock()
	defer doc.Unlock()
	return h.persistence.Save(ctx, doc)
}

// Disconnect leaves the document and releases it. Sessions that never
// joined are a no-op.
func (h *Hub) Disconnect(ctx context.Context, session *domain.Session) error {
	doc := session.Document
	if doc == nil {
		return nil
	}

	doc.Lock()
	h.sync.Leave(ctx, session, doc)
	doc.Unlock()

	return h.registry.Release(ctx, doc)
}

// correction rebases a client on the server's state of s.
func correction(s *domain.Shape) domain.EditShapes {
	return domain.EditShapes{
		IDs:       []string{s.ID},
		Timestamp: s.LastModified,
		Props:     s.Props.Clone(),
	}
}
