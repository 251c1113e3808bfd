package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// wireFrame mirrors what a connected client actually parses off the socket.
type wireFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func decodeOne(t *testing.T, c *Client) wireFrame {
	t.Helper()

	select {
	case raw := <-c.send:
		var frame wireFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		require.FailNow(t, "expected a queued frame, queue was empty")
		return wireFrame{}
	}
}

func TestService_Connect_Notifies_Other_Connections(t *testing.T) {
	req := require.New(t)
	svc := NewService("test-secret")

	// Given bob already online
	bob := newTestClient("c1", "bob")
	svc.Hub.Add(bob)
	svc.Tracker.Connect("bob", "c1")

	// When alice connects
	alice := newTestClient("c2", "alice")
	svc.Hub.Add(alice)
	svc.Tracker.Connect("alice", "c2")

	// Then bob receives the presence event with the bare username payload
	frame := decodeOne(t, bob)
	req.Equal("userConnected", frame.Event)
	req.JSONEq(`"alice"`, string(frame.Payload))

	// And alice herself receives nothing
	req.Empty(alice.send)
}

func TestService_Last_Disconnect_Notifies_Remaining_Connections(t *testing.T) {
	req := require.New(t)
	svc := NewService("test-secret")

	bob := newTestClient("c1", "bob")
	svc.Hub.Add(bob)
	svc.Tracker.Connect("bob", "c1")

	alice := newTestClient("c2", "alice")
	svc.Hub.Add(alice)
	svc.Tracker.Connect("alice", "c2")
	drainOne(t, bob) // alice's userConnected

	// When alice's only connection goes away
	svc.Tracker.Disconnect("alice", "c2")
	svc.Hub.Remove(alice)

	// Then bob sees the offline event
	frame := decodeOne(t, bob)
	req.Equal("userDisconnected", frame.Event)
	req.JSONEq(`"alice"`, string(frame.Payload))
}

func TestService_Broadcast_Envelope_Wire_Shape(t *testing.T) {
	req := require.New(t)
	svc := NewService("test-secret")

	alice := newTestClient("c1", "alice")
	bob := newTestClient("c2", "bob")
	svc.Hub.Add(alice)
	svc.Hub.Add(bob)
	svc.Tracker.Connect("alice", "c1")
	svc.Tracker.Connect("bob", "c2")
	drainOne(t, alice) // bob's userConnected
	drainOne(t, bob)   // alice's userConnected

	// When alice broadcasts
	svc.Router.Broadcast("alice", "hello room")

	// Then both parties receive the exact public envelope
	for _, c := range []*Client{alice, bob} {
		frame := decodeOne(t, c)
		req.Equal("received", frame.Event)
		req.JSONEq(`{"sender":"alice","message":"hello room","isPrivate":false}`, string(frame.Payload))
	}
}

func TestService_Direct_Message_Echoes_To_All_Sender_Tabs(t *testing.T) {
	req := require.New(t)
	svc := NewService("test-secret")

	// Given alice on two tabs and bob on one
	aliceTab1 := newTestClient("c1", "alice")
	aliceTab2 := newTestClient("c2", "alice")
	bob := newTestClient("c3", "bob")
	for _, c := range []*Client{aliceTab1, aliceTab2, bob} {
		svc.Hub.Add(c)
		svc.Tracker.Connect(c.username, c.id)
	}
	for _, c := range []*Client{aliceTab1, aliceTab2, bob} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	// When alice messages bob from her first tab
	svc.Router.SendDirect("alice", "bob", "secret")

	// Then bob and both of alice's tabs receive the private envelope
	for _, c := range []*Client{aliceTab1, aliceTab2, bob} {
		frame := decodeOne(t, c)
		req.Equal("received", frame.Event)
		req.JSONEq(`{"sender":"alice","message":"secret","isPrivate":true}`, string(frame.Payload))
	}
}

func TestService_Direct_Message_To_Offline_User_Reaches_Nobody(t *testing.T) {
	req := require.New(t)
	svc := NewService("test-secret")

	alice := newTestClient("c1", "alice")
	svc.Hub.Add(alice)
	svc.Tracker.Connect("alice", "c1")

	// When alice messages a user who is not online
	svc.Router.SendDirect("alice", "carol", "hello?")

	// Then not even the sender echo is delivered
	req.Empty(alice.send)
}
