package testutil

import (
	"testing"
	"time"

	"github.com/flowweek/flowweek/internal/infrastructure/realtime"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// frameWait bounds how long a watcher waits for a single frame.
const frameWait = 3 * time.Second

// Watcher is a websocket peer subscribed to a board. It performs the
// hello handshake on connect and exposes frame-by-frame reads.
type Watcher struct {
	t    *testing.T
	conn *websocket.Conn
}

// Watch connects a watcher to a board and completes the handshake.
func (e *Env) Watch(boardID int64, clientID string) *Watcher {
	e.t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(e.WSURL(boardID), nil)
	require.NoError(e.t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	hello, err := realtime.NewEnvelope(realtime.MessageHello, nil, clientID)
	require.NoError(e.t, err)
	payload, err := hello.Encode()
	require.NoError(e.t, err)
	require.NoError(e.t, conn.WriteMessage(websocket.TextMessage, payload))

	w := &Watcher{t: e.t, conn: conn}
	ack := w.Next()
	require.Equal(e.t, realtime.MessageConnected, ack.Type)

	e.t.Cleanup(func() {
		_ = conn.Close()
	})
	return w
}

// Next reads one frame, failing the test if none arrives in time.
func (w *Watcher) Next() *realtime.Envelope {
	w.t.Helper()

	require.NoError(w.t, w.conn.SetReadDeadline(time.Now().Add(frameWait)))
	_, raw, err := w.conn.ReadMessage()
	require.NoError(w.t, err, "timed out waiting for a frame")
	env, err := realtime.DecodeEnvelope(raw)
	require.NoError(w.t, err)
	return env
}

// Expect reads the next frame and asserts its message type.
func (w *Watcher) Expect(msgType string) *realtime.Envelope {
	w.t.Helper()
	env := w.Next()
	require.Equal(w.t, msgType, env.Type)
	return env
}

// ExpectNone asserts that no frame arrives within the given window.
func (w *Watcher) ExpectNone(window time.Duration) {
	w.t.Helper()

	require.NoError(w.t, w.conn.SetReadDeadline(time.Now().Add(window)))
	_, raw, err := w.conn.ReadMessage()
	if err == nil {
		w.t.Fatalf("unexpected frame: %s", raw)
	}
}
