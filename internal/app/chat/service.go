/*
Package chat is the WebSocket transport for the presence core.

This file wires the transport and the presence core together into one
Service handed to the HTTP layer.
*/
package chat

import "pulsechat/internal/app/presence"

// Service bundles the hub with the presence registry, tracker and router
// built on top of it. Constructed once at process start.
type Service struct {
	Hub      *Hub
	Registry *presence.Registry
	Tracker  *presence.Tracker
	Router   *presence.Router

	jwtSecret string
}

// NewService builds the hub, the registry, and the presence components that
// connect them.
func NewService(jwtSecret string) *Service {
	hub := NewHub()
	registry := presence.NewRegistry()

	return &Service{
		Hub:       hub,
		Registry:  registry,
		Tracker:   presence.NewTracker(registry, hub),
		Router:    presence.NewRouter(registry, hub),
		jwtSecret: jwtSecret,
	}
}

// Shutdown closes every open connection.
func (s *Service) Shutdown() {
	s.Hub.Shutdown()
}
