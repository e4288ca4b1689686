package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// SyncProtocol brings joining sessions up to date and keeps every session
// informed of who else is present.
type SyncProtocol struct {
	store driven.DocumentStore
}

// NewSyncProtocol creates a sync protocol that records user to document
// associations in store.
func NewSyncProtocol(store driven.DocumentStore) *SyncProtocol {
	return &SyncProtocol{store: store}
}

// Join replays the full document state to session and registers it.
//
// Shapes are replayed before any shape.parent command so the client never
// sees a parent link to a shape it has not created yet. Each shape's
// keyframes follow the shape itself.
func (p *SyncProtocol) Join(ctx context.Context, session *domain.Session, doc *domain.Document) error {
	// 1. Document metadata with a prefix for client generated ids
	if err := session.Send(ctx, domain.NewOpenMessage(doc, IDPrefix(session.User))); err != nil {
		return fmt.Errorf("send document.open: %w", err)
	}

	// 2. Roster of peers already present
	for _, peer := range doc.Sessions() {
		if peer.ID == session.ID {
			continue
		}
		if err := session.Send(ctx, domain.NewClientJoinMessage(peer.User)); err != nil {
			return fmt.Errorf("send roster: %w", err)
		}
	}

	// 3. Alive shapes, each followed by its keyframes
	alive := doc.AliveShapes()
	for _, s := range alive {
		add := domain.AddShape{ID: s.ID, Shape: s.Kind, Props: s.Props}
		if err := session.Send(ctx, domain.NewEditMessage(add)); err != nil {
			return fmt.Errorf("send shape %s: %w", s.ID, err)
		}
		for _, kf := range s.SortedKeyframes() {
			set := domain.SetKeyframe{ID: s.ID, Time: kf.Time, Props: kf.Props}
			if err := session.Send(ctx, domain.NewEditMessage(set)); err != nil {
				return fmt.Errorf("send keyframe %s@%v: %w", s.ID, kf.Time, err)
			}
		}
	}

	// 4. Parent links, once every shape exists client side
	for _, s := range alive {
		parent := s.Parent()
		if parent == nil {
			continue
		}
		id := parent.ID
		link := domain.ReparentShape{Child: s.ID, Parent: &id}
		if err := session.Send(ctx, domain.NewEditMessage(link)); err != nil {
			return fmt.Errorf("send parent of %s: %w", s.ID, err)
		}
	}

	// 5. End of replay
	if err := session.Send(ctx, domain.NewLoadedMessage()); err != nil {
		return fmt.Errorf("send document.loaded: %w", err)
	}

	// 6. Register the session and remember the document for the user
	session.Document = doc
	doc.AddSession(session)
	err := p.store.Atomic(ctx, func(tx driven.DocumentTx) error {
		return tx.LinkUser(ctx, session.User.ID, doc.ID)
	})
	if err != nil {
		logger.Error("link user %d to document %s: %v", session.User.ID, doc.PublicID, err)
	}

	// 7. Announce the new session to everyone else
	p.Broadcast(ctx, doc, session, domain.NewClientJoinMessage(session.User))

	logger.Info("session %s (user %d) joined document %s", session.ID, session.User.ID, doc.PublicID)
	return nil
}

// Leave unregisters session. Peers are told the user left only when this was
// the user's last session on the document.
func (p *SyncProtocol) Leave(ctx context.Context, session *domain.Session, doc *domain.Document) {
	if !doc.RemoveSession(session.ID) {
		return
	}
	session.Document = nil

	logger.Info("session %s (user %d) left document %s", session.ID, session.User.ID, doc.PublicID)

	if doc.HasUser(session.User.ID) {
		return
	}
	p.Broadcast(ctx, doc, nil, domain.NewClientLeaveMessage(session.User.ID))
}

// Broadcast sends msg to every session on doc except exclude, concurrently.
// A failed delivery is logged and does not affect the other recipients.
func (p *SyncProtocol) Broadcast(ctx context.Context, doc *domain.Document, exclude *domain.Session, msg domain.Message) {
	var wg sync.WaitGroup
	for _, s := range doc.Sessions() {
		if exclude != nil && s.ID == exclude.ID {
			continue
		}
		wg.Add(1)
		go func(s *domain.Session) {
			defer wg.Done()
			if err := s.Send(ctx, msg); err != nil {
				logger.Warn("broadcast %s to session %s: %v", msg.Type, s.ID, err)
			}
		}(s)
	}
	wg.Wait()
}

// IDPrefix returns a namespace for ids the client creates during one join.
// The ULID makes it unique per join; the user id makes it readable.
func IDPrefix(u domain.User) string {
	return fmt.Sprintf("%s-%d-", ulid.Make().String(), u.ID)
}
