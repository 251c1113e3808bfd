/*
Package chat is the WebSocket transport for the presence core.

This file defines the wire frames exchanged with clients. Outbound frames
wrap a presence event (or a transport-level event) with its payload; inbound
frames carry the client's requests.
*/
package chat

// MessageType identifies an inbound client frame.
type MessageType string

const (
	// TypeSend carries a chat message. An empty "to" broadcasts to everyone;
	// a username targets that user directly.
	TypeSend MessageType = "SEND"

	// TypeUsers requests the list of currently connected users.
	TypeUsers MessageType = "USERS"
)

// Transport-level outbound event names. Presence and message event names live
// in the presence package; these cover everything else the server pushes.
const (
	// EventConnectedUsers answers a TypeUsers request.
	EventConnectedUsers = "connectedUsers"

	// EventError reports a rejected inbound frame.
	EventError = "error"

	// EventTokenUpdate pushes a refreshed session token before expiry.
	EventTokenUpdate = "tokenUpdate"
)

// Frame is the outbound wire format: one event name plus its payload.
type Frame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// SendPayload is the body of a SEND frame.
type SendPayload struct {
	Content string `json:"content"`
	To      string `json:"to,omitempty"`
}

// ErrorPayload mirrors errs.CustomError on the wire.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TokenUpdatePayload carries a refreshed JWT.
type TokenUpdatePayload struct {
	Token string `json:"token"`
}
