package presence

import (
	"github.com/rs/zerolog"

	"pulsechat/internal/pkg/logx"
)

// Router resolves message targets to live connection ids and hands delivery
// to the transport. Routing is fire and forget: an unknown target drops the
// message without feedback to the sender.
type Router struct {
	registry  *Registry
	transport Transport
	logger    zerolog.Logger
}

// NewRouter constructs a Router over the given registry and transport.
func NewRouter(registry *Registry, transport Transport) *Router {
	return &Router{
		registry:  registry,
		transport: transport,
		logger:    logx.Logger().With().Str("component", "MessageRouter").Logger(),
	}
}

// Broadcast delivers a public message to every open connection. No registry
// lookup is involved: the target is every connection regardless of user.
func (rt *Router) Broadcast(sender, text string) {
	rt.transport.DeliverToAll(EventReceived, Envelope{
		Sender:    sender,
		Message:   text,
		IsPrivate: false,
	})
}

// SendDirect delivers a private message to every connection of the receiver
// and every connection of the sender, so the sender sees its own message
// echoed on all of its open tabs. A receiver with no live connections drops
// the message silently.
func (rt *Router) SendDirect(sender, receiver, text string) {
	rcv, ok := rt.registry.Lookup(receiver)
	if !ok {
		rt.logger.Debug().
			Str("sender", sender).
			Str("receiver", receiver).
			Msg("Direct message to offline user dropped.")
		return
	}

	snd, ok := rt.registry.Lookup(sender)
	if !ok {
		// The sender issued this over a live connection; a miss means it
		// disconnected mid-send.
		rt.logger.Warn().
			Str("sender", sender).
			Msg("Direct message from unregistered sender dropped.")
		return
	}

	envelope := Envelope{
		Sender:    snd.Name,
		Message:   text,
		IsPrivate: true,
	}

	for _, connID := range rt.registry.JointSnapshot(rcv, snd) {
		rt.transport.DeliverToConnection(connID, EventReceived, envelope)
	}
}
