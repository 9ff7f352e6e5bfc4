package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHubClient(boardID int64, clientID string, buffer int) *Client {
	return &Client{
		send:     make(chan []byte, buffer),
		boardID:  boardID,
		clientID: clientID,
	}
}

func receiveFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestHub_Broadcast(t *testing.T) {
	t.Run("delivers to clients on the board", func(t *testing.T) {
		hub := NewHub(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		a := newHubClient(1, "a", 4)
		b := newHubClient(1, "b", 4)
		hub.register <- a
		hub.register <- b

		hub.Broadcast(1, []byte("frame"))

		assert.Equal(t, []byte("frame"), receiveFrame(t, a))
		assert.Equal(t, []byte("frame"), receiveFrame(t, b))
	})

	t.Run("does not leak across boards", func(t *testing.T) {
		hub := NewHub(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		watcher := newHubClient(1, "a", 4)
		other := newHubClient(2, "b", 4)
		hub.register <- watcher
		hub.register <- other

		hub.Broadcast(1, []byte("frame"))

		assert.Equal(t, []byte("frame"), receiveFrame(t, watcher))
		select {
		case payload := <-other.send:
			t.Fatalf("unexpected frame on other board: %q", payload)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("unregistered client stops receiving", func(t *testing.T) {
		hub := NewHub(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		c := newHubClient(1, "a", 4)
		hub.register <- c
		hub.unregister <- c

		// send channel is closed on unregister
		_, open := <-c.send
		assert.False(t, open)
	})

	t.Run("drops slow consumer instead of blocking", func(t *testing.T) {
		hub := NewHub(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		slow := newHubClient(1, "slow", 1)
		healthy := newHubClient(1, "healthy", 8)
		hub.register <- slow
		hub.register <- healthy

		hub.Broadcast(1, []byte("one"))
		hub.Broadcast(1, []byte("two"))
		hub.Broadcast(1, []byte("three"))

		// healthy client keeps receiving
		require.Equal(t, []byte("one"), receiveFrame(t, healthy))
		require.Equal(t, []byte("two"), receiveFrame(t, healthy))
		require.Equal(t, []byte("three"), receiveFrame(t, healthy))
	})
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := newHubClient(1, "a", 4)
	hub.register <- c

	cancel()
	<-done

	_, open := <-c.send
	assert.False(t, open)
}
