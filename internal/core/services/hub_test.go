package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

func TestHub_ConnectTwoUsersOnlySeeTheirOwnDocuments(t *testing.T) {
	f := newFixture(t)

	a, _ := f.connect(t, "a", 1)
	b, _ := f.connect(t, "b", 2)

	assert.NotSame(t, a.Document, b.Document)
	assert.Equal(t, 2, f.registry.Len())
}

func TestHub_ConnectTwice(t *testing.T) {
	f := newFixture(t)
	s, _ := f.connect(t, "a", 1)

	err := f.hub.Connect(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHub_ConnectFailureReleasesDocument(t *testing.T) {
	f := newFixture(t)
	s, conn := newSession("a", 1)
	conn.err = errors.New("gone")

	err := f.hub.Connect(context.Background(), s)
	require.Error(t, err)
	assert.Nil(t, s.Document)
	assert.Equal(t, 0, f.registry.Len())
}

func TestHub_HandleEditRelaysToPeers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tab1, conn1 := f.connect(t, "tab1", 1)
	_, conn2 := f.connect(t, "tab2", 1)
	conn1.reset()
	conn2.reset()

	add := domain.AddShape{ID: "r", Shape: domain.KindRectangle, Props: domain.Props{"width": 1.0}}
	require.NoError(t, f.hub.HandleEdit(ctx, tab1, add))

	assert.Empty(t, conn1.messages(), "sender is not echoed")
	assert.Equal(t, []domain.Command{add}, conn2.edits())

	// No-ops are not relayed.
	require.NoError(t, f.hub.HandleEdit(ctx, tab1, domain.DeleteShape{ID: "missing"}))
	assert.Len(t, conn2.edits(), 1)
}

// Two overlapping batches arriving out of order: the older one is rejected
// in full and its sender is rebased on the newer state.
func TestHub_StaleBatchIsCorrected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, connA := f.connect(t, "a", 1)
	b, connB := f.connect(t, "b", 1)

	require.NoError(t, f.hub.HandleEdit(ctx, a, domain.AddShape{ID: "s1", Shape: domain.KindRectangle, Props: domain.Props{"left": 0.0}}))
	require.NoError(t, f.hub.HandleEdit(ctx, a, domain.AddShape{ID: "s2", Shape: domain.KindRectangle, Props: domain.Props{"left": 0.0}}))

	t2 := domain.EditShapes{IDs: []string{"s2"}, Timestamp: 2, Props: domain.Props{"left": 20.0}}
	t1 := domain.EditShapes{IDs: []string{"s1", "s2"}, Timestamp: 1, Props: domain.Props{"left": 10.0}}
	require.NoError(t, f.hub.HandleEdit(ctx, b, t2))
	connA.reset()
	connB.reset()

	require.NoError(t, f.hub.HandleEdit(ctx, a, t1))

	doc := a.Document
	s1 := mustShape(t, doc, "s1")
	s2 := mustShape(t, doc, "s2")
	assert.Equal(t, 0.0, s1.Props["left"])
	assert.Equal(t, 20.0, s2.Props["left"])

	corrections := connA.edits()
	require.Len(t, corrections, 1)
	fix := corrections[0].(domain.EditShapes)
	assert.Equal(t, []string{"s2"}, fix.IDs)
	assert.Equal(t, 2.0, fix.Timestamp)
	assert.Equal(t, 20.0, fix.Props["left"])

	assert.Empty(t, connB.messages(), "rejected batches are not relayed")
}

func TestHub_ReparentIsNotTimestampChecked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, _ := f.connect(t, "a", 1)

	require.NoError(t, f.hub.HandleEdit(ctx, s, domain.AddShape{ID: "g", Shape: domain.KindGroup}))
	require.NoError(t, f.hub.HandleEdit(ctx, s, domain.AddShape{ID: "r", Shape: domain.KindRectangle}))
	require.NoError(t, f.hub.HandleEdit(ctx, s, domain.EditShapes{IDs: []string{"r"}, Timestamp: 100}))
	require.NoError(t, f.hub.HandleEdit(ctx, s, domain.ReparentShape{Child: "r", Parent: strPtr("g")}))

	assert.Equal(t, "g", mustShape(t, s.Document, "r").Parent().ID)
}

func TestHub_WithoutDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, _ := newSession("lonely", 1)

	assert.ErrorIs(t, f.hub.HandleEdit(ctx, s, domain.DeleteShape{ID: "x"}), domain.ErrNoDocument)
	assert.ErrorIs(t, f.hub.Save(ctx, s), domain.ErrNoDocument)
	assert.NoError(t, f.hub.Disconnect(ctx, s))
}

func TestHub_SaveAndDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _ := f.connect(t, "a", 1)
	peer, peerConn := f.connect(t, "peer", 1)
	require.NoError(t, f.hub.HandleEdit(ctx, a, domain.AddShape{ID: "r", Shape: domain.KindRectangle}))

	require.NoError(t, f.hub.Save(ctx, a))
	stored, err := f.persistence.Load(ctx, a.Document.ID)
	require.NoError(t, err)
	_, ok := stored.Shape("r")
	assert.True(t, ok)

	doc := a.Document
	require.NoError(t, f.hub.Disconnect(ctx, a))
	assert.Nil(t, a.Document)
	assert.Equal(t, 1, f.registry.Len())
	assert.Empty(t, peerConn.ofType(domain.MsgClientLeave), "same user is still connected")

	require.NoError(t, f.hub.Disconnect(ctx, peer))
	assert.Equal(t, 0, f.registry.Len())
	assert.Empty(t, doc.Sessions())
}

func TestHub_ReconnectRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, _ := f.connect(t, "a", 1)
	require.NoError(t, f.hub.HandleEdit(ctx, s, domain.AddShape{ID: "r", Shape: domain.KindRectangle}))
	require.NoError(t, f.hub.HandleEdit(ctx, s, domain.SetKeyframe{ID: "r", Time: 30, Props: domain.Props{"width": 20.0}}))
	require.NoError(t, f.hub.Disconnect(ctx, s))

	_, conn := f.connect(t, "b", 1)
	cmds := conn.edits()
	require.Len(t, cmds, 2)
	assert.Equal(t, "r", cmds[0].(domain.AddShape).ID)
	assert.Equal(t, 30.0, cmds[1].(domain.SetKeyframe).Time)
}
