/*
Package chat contains the core logic for relaying real-time room chat between connections.

This file defines the Broadcaster, which turns "deliver this event to that audience" into a
concrete list of connection ids and hands it to the Transport.
*/
package chat

import (
	"relaychat/internal/app/user"
)

// Transport delivers an event to a set of live connections.
// Implementations must not block on network I/O inside Deliver.
type Transport interface {
	Deliver(targets []string, ev Event)
}

// Broadcaster computes fanout targets from the Registry at delivery time.
type Broadcaster struct {
	// registry is the source of room membership; it is read on every call, never cached.
	registry *user.Registry

	// transport receives the computed target set.
	transport Transport
}

// NewBroadcaster creates a Broadcaster reading membership from registry.
func NewBroadcaster(registry *user.Registry, transport Transport) *Broadcaster {
	return &Broadcaster{
		registry:  registry,
		transport: transport,
	}
}

// ToConnection delivers ev to a single connection.
func (b *Broadcaster) ToConnection(connectionID string, ev Event) {
	b.deliver([]string{connectionID}, ev)
}

// ToRoomExcept delivers ev to every member of room except connectionID.
func (b *Broadcaster) ToRoomExcept(room, connectionID string, ev Event) {
	members := b.registry.GetUsersInRoom(room)

	targets := make([]string, 0, len(members))
	for _, u := range members {
		if u.ID != connectionID {
			targets = append(targets, u.ID)
		}
	}

	b.deliver(targets, ev)
}

// ToRoom delivers ev to every member of room.
func (b *Broadcaster) ToRoom(room string, ev Event) {
	members := b.registry.GetUsersInRoom(room)

	targets := make([]string, 0, len(members))
	for _, u := range members {
		targets = append(targets, u.ID)
	}

	b.deliver(targets, ev)
}

func (b *Broadcaster) deliver(targets []string, ev Event) {
	if len(targets) == 0 {
		return
	}
	b.transport.Deliver(targets, ev)
}
