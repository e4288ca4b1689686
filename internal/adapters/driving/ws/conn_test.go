package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// connectionPair returns the server side connection and the raw client socket.
func connectionPair(t *testing.T) (*connection, *websocket.Conn) {
	t.Helper()

	conns := make(chan *connection, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- newConnection(socket)
	}))
	t.Cleanup(ts.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-conns:
		t.Cleanup(func() {
			// Closing the client first unblocks a writer stuck on a full socket.
			client.Close()
			c.close()
			c.wait()
		})
		return c, client
	case <-time.After(5 * time.Second):
		t.Fatal("no server connection")
		return nil, nil
	}
}

func TestConnection_BurstLargerThanQueueIsDelivered(t *testing.T) {
	c, client := connectionPair(t)
	const n = outboundQueue * 4

	received := make(chan int, 1)
	go func() {
		count := 0
		for count < n {
			_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
			if _, _, err := client.ReadMessage(); err != nil {
				break
			}
			count++
		}
		received <- count
	}()

	for i := 0; i < n; i++ {
		require.NoError(t, c.Send(context.Background(), domain.NewLoadedMessage()), "message %d", i)
	}
	assert.Equal(t, n, <-received)
}

func TestConnection_StalledPeerIsDisconnected(t *testing.T) {
	c, _ := connectionPair(t)
	c.stall = 50 * time.Millisecond

	// The client never reads, so socket buffers and then the queue fill up.
	payload := domain.NewErrorMessage(strings.Repeat("x", 64<<10))
	var err error
	for i := 0; i < 10000 && err == nil; i++ {
		err = c.Send(context.Background(), payload)
	}
	assert.ErrorIs(t, err, errSlowConsumer)
	assert.ErrorIs(t, c.Send(context.Background(), payload), errConnectionClosed)
}

func TestConnection_SendHonoursContextWhileQueueFull(t *testing.T) {
	c, _ := connectionPair(t)
	c.stall = time.Minute

	payload := domain.NewErrorMessage(strings.Repeat("x", 64<<10))
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var err error
	for i := 0; i < 10000 && err == nil; i++ {
		err = c.Send(ctx, payload)
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
