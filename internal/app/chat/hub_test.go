package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"pulsechat/internal/app/presence"
	"pulsechat/internal/pkg/logx"
)

// newTestClient builds a client with a live send queue and no socket; the
// hub never touches the connection, only the queue.
func newTestClient(connID, username string) *Client {
	return &Client{
		id:       connID,
		username: username,
		send:     make(chan []byte, sendQueueSize),
		logger:   logx.Logger().With().Str("conn_id", connID).Logger(),
	}
}

func drainOne(t *testing.T, c *Client) Frame {
	t.Helper()

	select {
	case raw := <-c.send:
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		require.FailNow(t, "expected a queued frame, queue was empty")
		return Frame{}
	}
}

func TestHub_DeliverToAll_Reaches_Every_Connection(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := newTestClient("c1", "alice")
	c2 := newTestClient("c2", "bob")
	hub.Add(c1)
	hub.Add(c2)

	// When a broadcast frame is delivered
	hub.DeliverToAll(presence.EventReceived, presence.Envelope{
		Sender:  "alice",
		Message: "hello",
	})

	// Then both queues hold the same frame
	f1 := drainOne(t, c1)
	f2 := drainOne(t, c2)
	req.Equal(presence.EventReceived, f1.Event)
	req.Equal(f1, f2)
}

func TestHub_DeliverToConnection_Targets_One_Connection(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := newTestClient("c1", "alice")
	c2 := newTestClient("c2", "bob")
	hub.Add(c1)
	hub.Add(c2)

	// When a frame is addressed to c2 only
	hub.DeliverToConnection("c2", presence.EventReceived, presence.Envelope{
		Sender:    "alice",
		Message:   "psst",
		IsPrivate: true,
	})

	// Then only c2's queue receives it
	req.Empty(c1.send)
	frame := drainOne(t, c2)
	req.Equal(presence.EventReceived, frame.Event)
}

func TestHub_DeliverToConnection_Unknown_Id_Is_Skipped(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := newTestClient("c1", "alice")
	hub.Add(c1)

	// When a frame targets a connection that already closed
	hub.DeliverToConnection("gone", presence.EventReceived, presence.Envelope{Sender: "alice"})

	// Then nothing is queued anywhere
	req.Empty(c1.send)
}

func TestHub_DeliverToAllExcept_Skips_The_Origin(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := newTestClient("c1", "alice")
	c2 := newTestClient("c2", "bob")
	c3 := newTestClient("c3", "carol")
	hub.Add(c1)
	hub.Add(c2)
	hub.Add(c3)

	// When a presence event excludes its triggering connection
	hub.DeliverToAllExcept("c1", presence.EventUserConnected, "alice")

	// Then everyone but the origin gets it
	req.Empty(c1.send)

	f2 := drainOne(t, c2)
	f3 := drainOne(t, c3)
	req.Equal(presence.EventUserConnected, f2.Event)
	req.Equal("alice", f2.Payload)
	req.Equal(f2, f3)
}

func TestHub_Remove_Only_Drops_The_Registered_Client(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	// Given a reconnect reused the connection id before the old client's
	// cleanup ran
	old := newTestClient("c1", "alice")
	replacement := newTestClient("c1", "alice")
	hub.Add(old)
	hub.Add(replacement)

	// When the old client's cleanup removes itself
	hub.Remove(old)

	// Then the replacement stays registered
	req.Equal(1, hub.Count())
	hub.DeliverToConnection("c1", presence.EventReceived, presence.Envelope{Sender: "bob"})
	req.Empty(old.send)
	req.Len(replacement.send, 1)
}

func TestHub_Delivery_Drops_Frame_When_Queue_Is_Full(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	slow := newTestClient("c1", "alice")
	hub.Add(slow)

	// Given a receiver that never drains its queue
	for range sendQueueSize {
		hub.DeliverToAll(presence.EventReceived, presence.Envelope{Sender: "bob", Message: "x"})
	}
	req.Len(slow.send, sendQueueSize)

	// When one more frame arrives
	hub.DeliverToAll(presence.EventReceived, presence.Envelope{Sender: "bob", Message: "overflow"})

	// Then the frame is dropped rather than blocking the sender
	req.Len(slow.send, sendQueueSize)
}

func TestHub_Delivery_To_Closed_Client_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := newTestClient("c1", "alice")
	hub.Add(c1)
	c1.closeSend()

	// When a frame is delivered after the send queue closed
	hub.DeliverToAll(presence.EventReceived, presence.Envelope{Sender: "bob"})

	// Then the closed client is skipped without panicking
	req.Equal(1, hub.Count())
}

func TestHub_Shutdown_Closes_Every_Send_Queue(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := newTestClient("c1", "alice")
	c2 := newTestClient("c2", "bob")
	hub.Add(c1)
	hub.Add(c2)

	// When the hub shuts down
	hub.Shutdown()

	// Then the table empties and both queues are closed
	req.Equal(0, hub.Count())

	_, open1 := <-c1.send
	_, open2 := <-c2.send
	req.False(open1)
	req.False(open2)
}
