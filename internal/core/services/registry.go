package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// Registry holds the one live instance of every open document.
//
// Each Acquire takes a reference and each Release drops one. The document is
// saved and evicted when the last reference goes. Concurrent Acquires for the
// same user share a single load, so a first-time user opening two tabs at
// once still ends up with one document.
type Registry struct {
	persistence *Persistence
	timeline    domain.Timeline

	loads singleflight.Group

	mu     sync.Mutex
	docs   map[string]*registryEntry
	byUser map[int64]string
	closed bool
}

type registryEntry struct {
	doc  *domain.Document
	refs int
}

// NewRegistry creates a registry. New documents get the given timeline.
func NewRegistry(persistence *Persistence, timeline domain.Timeline) *Registry {
	return &Registry{
		persistence: persistence,
		timeline:    timeline,
		docs:        make(map[string]*registryEntry),
		byUser:      make(map[int64]string),
	}
}

// Acquire returns the user's open document, loading the most recent stored
// one or creating a new one when none is open. The caller must Release it.
func (r *Registry) Acquire(ctx context.Context, user domain.User) (*domain.Document, error) {
	// The load is shared by every coalesced caller, so one caller going
	// away must not cancel it for the others.
	loadCtx := context.WithoutCancel(ctx)

	// A Release may evict the document between resolve and taking the
	// reference; resolving again then reloads the freshly saved state.
	for attempt := 0; attempt < 3; attempt++ {
		v, err, _ := r.loads.Do(strconv.FormatInt(user.ID, 10), func() (any, error) {
			return r.resolve(loadCtx, user)
		})
		if err != nil {
			return nil, err
		}
		publicID := v.(string)

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, domain.ErrClosed
		}
		if entry, ok := r.docs[publicID]; ok {
			entry.refs++
			r.mu.Unlock()
			return entry.doc, nil
		}
		r.mu.Unlock()
		logger.Debug("document %s evicted during acquire, retrying", publicID)
	}
	return nil, fmt.Errorf("open document for user %d: evicted repeatedly", user.ID)
}

// resolve registers the user's document and returns its public id. The entry
// is not referenced yet; Acquire does that under the lock.
func (r *Registry) resolve(ctx context.Context, user domain.User) (string, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", domain.ErrClosed
	}
	if publicID, ok := r.byUser[user.ID]; ok {
		r.mu.Unlock()
		return publicID, nil
	}
	r.mu.Unlock()

	doc, err := r.persistence.LoadLatest(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		doc, err = r.persistence.Create(ctx, user.ID, r.timeline)
	}
	if err != nil {
		return "", fmt.Errorf("open document for user %d: %w", user.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.PublicID]; !ok {
		r.docs[doc.PublicID] = &registryEntry{doc: doc}
	}
	r.byUser[user.ID] = doc.PublicID
	return doc.PublicID, nil
}

// Release drops one reference. The last reference saves the document and
// evicts it. If the save fails the document stays registered so its state is
// not lost, and the error is returned.
func (r *Registry) Release(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	entry, ok := r.docs[doc.PublicID]
	if !ok || entry.doc != doc {
		r.mu.Unlock()
		return fmt.Errorf("document %s: %w", doc.PublicID, domain.ErrNotFound)
	}
	entry.refs--
	if entry.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	doc.Lock()
	err := r.persistence.Save(ctx, doc)
	doc.Unlock()
	if err != nil {
		logger.Error("keeping document %s in memory: %v", doc.PublicID, err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Someone may have acquired it while we were saving.
	if entry.refs > 0 {
		return nil
	}
	r.evict(doc.PublicID)
	logger.Info("evicted document %s", doc.PublicID)
	return nil
}

// Lookup returns a live document by public id.
func (r *Registry) Lookup(publicID string) (*domain.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.docs[publicID]
	if !ok {
		return nil, false
	}
	return entry.doc, true
}

// Documents returns the live documents ordered by public id.
func (r *Registry) Documents() []*domain.Document {
	r.mu.Lock()
	docs := make([]*domain.Document, 0, len(r.docs))
	for _, entry := range r.docs {
		docs = append(docs, entry.doc)
	}
	r.mu.Unlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].PublicID < docs[j].PublicID })
	return docs
}

// Len returns the number of live documents.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// Close saves every live document and refuses further Acquires. Save errors
// are joined; documents that failed to save stay registered.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	docs := make([]*domain.Document, 0, len(r.docs))
	for _, entry := range r.docs {
		docs = append(docs, entry.doc)
	}
	r.mu.Unlock()

	var errs []error
	for _, doc := range docs {
		doc.Lock()
		err := r.persistence.Save(ctx, doc)
		doc.Unlock()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.mu.Lock()
		r.evict(doc.PublicID)
		r.mu.Unlock()
	}
	return errors.Join(errs...)
}

// evict removes a document and its user index entries. Caller holds r.mu.
func (r *Registry) evict(publicID string) {
	delete(r.docs, publicID)
	for userID, id := range r.byUser {
		if id == publicID {
			delete(r.byUser, userID)
		}
	}
}
