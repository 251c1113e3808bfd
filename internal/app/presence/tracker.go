package presence

import (
	"github.com/rs/zerolog"

	"pulsechat/internal/pkg/logx"
)

// Tracker turns registry mutations into presence events. Only the boundary
// crossings of a user's connection count (0↔1) emit events; opening a second
// tab or closing one of several is silent.
type Tracker struct {
	registry  *Registry
	transport Transport
	logger    zerolog.Logger
}

// NewTracker constructs a Tracker emitting through the given transport.
func NewTracker(registry *Registry, transport Transport) *Tracker {
	return &Tracker{
		registry:  registry,
		transport: transport,
		logger:    logx.Logger().With().Str("component", "PresenceTracker").Logger(),
	}
}

// Connect records a new connection for username. On the user's first
// connection a userConnected event goes to every connection except the one
// that triggered the transition. The event is emitted only after the
// connection is durably registered, so observers that query the registry on
// receipt see consistent state.
func (t *Tracker) Connect(username, connID string) {
	u, first := t.registry.Register(username, connID)
	if !first {
		t.logger.Debug().
			Str("username", u.Name).
			Str("conn_id", connID).
			Int("connections", u.Conns().Len()).
			Msg("Additional connection for user already online.")
		return
	}

	t.logger.Info().
		Str("username", u.Name).
		Str("conn_id", connID).
		Msg("User came online.")

	t.transport.DeliverToAllExcept(connID, EventUserConnected, u.Name)
}

// Disconnect records a closed connection for username. When it was the user's
// last connection the record is gone from the registry before the
// userDisconnected event reaches the remaining connections. Stale disconnects
// are a silent no-op.
func (t *Tracker) Disconnect(username, connID string) {
	u, last := t.registry.Unregister(username, connID)
	if u == nil {
		t.logger.Debug().
			Str("username", username).
			Str("conn_id", connID).
			Msg("Disconnect for unregistered user ignored.")
		return
	}
	if !last {
		return
	}

	t.logger.Info().
		Str("username", u.Name).
		Str("conn_id", connID).
		Msg("User went offline.")

	t.transport.DeliverToAllExcept(connID, EventUserDisconnected, u.Name)
}

// Online lists online usernames as seen from the given connection: every
// online user except those whose connection set contains excludeConnID.
func (t *Tracker) Online(excludeConnID string) []string {
	return t.registry.OnlineUsernames(excludeConnID)
}
