/*
Package presence is the concurrent user-presence registry and message-routing
core. It tracks which logical users are online (possibly through several
simultaneous connections), detects offline/online boundary transitions, and
resolves message targets to live connection ids.

The package never talks to the network itself: delivery is handed to a
Transport, and every fan-out operates on a snapshot of connection ids taken
before any delivery call.
*/
package presence

// Event names pushed to clients. These are part of the wire contract shared
// with the frontend and must not change without a coordinated client release.
const (
	EventReceived         = "received"
	EventUserConnected    = "userConnected"
	EventUserDisconnected = "userDisconnected"
)

// Envelope is the payload delivered for both public and direct messages.
type Envelope struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	IsPrivate bool   `json:"isPrivate"`
}

// Transport delivers an event to live connections. Implementations must not
// block the caller on a slow receiver, and a failed delivery to one
// connection must not affect delivery to the others.
type Transport interface {
	// DeliverToAll sends the event to every open connection.
	DeliverToAll(event string, payload any)

	// DeliverToConnection sends the event to a single connection id.
	// Unknown ids are ignored.
	DeliverToConnection(connID string, event string, payload any)

	// DeliverToAllExcept sends the event to every open connection except the
	// given one. Used for presence broadcasts, where the connection that
	// triggered the transition is excluded.
	DeliverToAllExcept(connID string, event string, payload any)
}
