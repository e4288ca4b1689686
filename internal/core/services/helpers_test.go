package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
)

// --- Test doubles shared by the service tests ---

// recordingConn captures every message sent to a session.
type recordingConn struct {
	mu   sync.Mutex
	msgs []domain.Message
	err  error
}

func (c *recordingConn) Send(_ context.Context, msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *recordingConn) messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.msgs...)
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

// ofType returns the messages of one type.
func (c *recordingConn) ofType(typ string) []domain.Message {
	var out []domain.Message
	for _, m := range c.messages() {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

// edits returns the commands of every document.edit message.
func (c *recordingConn) edits() []domain.Command {
	var out []domain.Command
	for _, m := range c.ofType(domain.MsgDocumentEdit) {
		out = append(out, m.Payload.(domain.EditPayload).Data)
	}
	return out
}

func newSession(id string, userID int64) (*domain.Session, *recordingConn) {
	conn := &recordingConn{}
	return &domain.Session{
		ID:   id,
		User: domain.User{ID: userID, Name: "user" + strconv.FormatInt(userID, 10)},
		Conn: conn,
	}, conn
}

// prefixCodec encodes ids as "d<id>".
type prefixCodec struct{}

func (prefixCodec) Encode(id int64) string { return "d" + strconv.FormatInt(id, 10) }

func (prefixCodec) Decode(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "d"), 10, 64)
	if err != nil || !strings.HasPrefix(s, "d") {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidInput, s)
	}
	return id, nil
}

// namesEncoder encodes an animation as the JSON list of its top-level group
// names, and counts its calls.
type namesEncoder struct {
	calls atomic.Int32
}

func (e *namesEncoder) Encode(anim *domain.Animation) ([]byte, error) {
	e.calls.Add(1)
	names := make([]string, 0, len(anim.Groups))
	for _, g := range anim.Groups {
		names = append(names, g.Name)
	}
	return json.Marshal(names)
}

func (e *namesEncoder) Sticker(encoded []byte) ([]byte, error) {
	return append([]byte("sticker:"), encoded...), nil
}

// flakyStore fails every transaction while failing is set, after running fn
// so that partial writes are attempted and must be rolled back.
type flakyStore struct {
	driven.DocumentStore
	failing atomic.Bool
}

var errFlaky = errors.New("storage unavailable")

func (s *flakyStore) Atomic(ctx context.Context, fn func(tx driven.DocumentTx) error) error {
	return s.DocumentStore.Atomic(ctx, func(tx driven.DocumentTx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if s.failing.Load() {
			return errFlaky
		}
		return nil
	})
}

type fixture struct {
	store       *flakyStore
	encoder     *namesEncoder
	persistence *Persistence
	registry    *Registry
	sync        *SyncProtocol
	hub         *Hub
	exports     *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   &flakyStore{DocumentStore: memory.NewDocumentStore()},
		encoder: &namesEncoder{},
	}
	f.persistence = NewPersistence(f.store, prefixCodec{}, f.encoder)
	f.registry = NewRegistry(f.persistence, domain.DefaultTimeline())
	f.sync = NewSyncProtocol(f.store)
	f.hub = NewHub(f.registry, f.sync, NewEditor(), f.persistence)
	f.exports = NewExportService(f.registry, f.persistence, f.encoder)
	return f
}

// connect joins a new session and fails the test on error.
func (f *fixture) connect(t *testing.T, id string, userID int64) (*domain.Session, *recordingConn) {
	t.Helper()
	s, conn := newSession(id, userID)
	require.NoError(t, f.hub.Connect(context.Background(), s))
	return s, conn
}

func strPtr(s string) *string { return &s }
