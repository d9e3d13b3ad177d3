/*
Package chat contains the core logic for relaying real-time room chat between connections.

This file defines the Manager struct, the connection table of the relay. It tracks every live
Client, implements Transport by queueing encoded events onto client send channels, and hands
connection lifecycle events to the Coordinator.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"relaychat/internal/app/user"
	"relaychat/internal/configs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/metrics"
	"relaychat/internal/pkg/profanity"
)

// Manager struct owns all live connections and the session state behind them.
type Manager struct {
	// clients stores every registered Client, keyed by connection id.
	clients map[string]*Client

	// registry holds the joined users; shared with the coordinator.
	registry *user.Registry

	// coordinator runs the session protocol.
	coordinator *Coordinator

	// Config holds the application's read-only configuration settings.
	config *configs.AppConfig

	// mu protects clients and closed. Channel sends and closes happen under it.
	mu sync.RWMutex

	// closed is set by Shutdown; no new clients are accepted afterwards.
	closed bool

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs and returns a new Manager instance with its own registry and coordinator.
func NewManager(cfg *configs.AppConfig, filter profanity.Filter, opts ...CoordinatorOption) *Manager {
	m := &Manager{
		clients:  make(map[string]*Client),
		registry: user.NewRegistry(),
		config:   cfg,
		logger:   logx.Component("Manager"),
	}

	opts = append([]CoordinatorOption{WithMaxMessageBytes(cfg.MaxMessageBytes)}, opts...)
	m.coordinator = NewCoordinator(m.registry, m, filter, opts...)

	return m
}

// Coordinator returns the session coordinator.
func (m *Manager) Coordinator() *Coordinator {
	return m.coordinator
}

// Registry returns the user registry.
func (m *Manager) Registry() *user.Registry {
	return m.registry
}

// Register adds a client to the connection table.
// It returns false once the manager has been shut down.
func (m *Manager) Register(c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	m.clients[c.id] = c
	metrics.Connections.Inc()

	m.logger.Debug().
		Str("connection_id", c.id).
		Int("total_connections", len(m.clients)).
		Msg("Client registered.")

	return true
}

// Unregister removes a client, closes its send channel and ends its session.
// Calls for unknown or already-removed clients are ignored.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	current, ok := m.clients[c.id]
	if !ok || current != c {
		m.mu.Unlock()
		return
	}
	delete(m.clients, c.id)
	close(c.send)
	remaining := len(m.clients)
	m.mu.Unlock()

	metrics.Connections.Dec()
	m.coordinator.HandleDisconnect(c.id)

	m.logger.Debug().
		Str("connection_id", c.id).
		Int("total_connections", remaining).
		Msg("Client unregistered.")
}

// Deliver implements Transport. The event is encoded once and queued to every live target.
// Targets whose queue is full are dropped; the event is not retried.
func (m *Manager) Deliver(targets []string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		m.logger.Error().Err(err).Str("event", string(ev.Name)).Msg("Error marshaling event for delivery.")
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range targets {
		c, ok := m.clients[id]
		if !ok {
			continue
		}
		m.enqueueLocked(c, data)
	}
}

// send queues a pre-encoded frame to a single client if it is still registered.
func (m *Manager) send(c *Client, data []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if current, ok := m.clients[c.id]; !ok || current != c {
		return false
	}
	return m.enqueueLocked(c, data)
}

// enqueueLocked performs a non-blocking send. Callers must hold mu.
func (m *Manager) enqueueLocked(c *Client, data []byte) bool {
	select {
	case c.send <- data:
		metrics.Deliveries.Inc()
		return true
	default:
		metrics.Dropped.Inc()
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping connection.")
		c.dropAsync("send queue overflow")
		return false
	}
}

// ClientCount returns the number of live connections.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// Shutdown closes every connection and refuses new ones.
// Sessions are discarded without leave notifications; joins still in flight are rejected.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down Manager...")

	// coordinator before mu, matching the lock order of event delivery.
	discarded := m.coordinator.Close()

	m.mu.Lock()
	m.closed = true
	for id, c := range m.clients {
		close(c.send)
		delete(m.clients, id)
		metrics.Connections.Dec()
	}
	m.mu.Unlock()

	m.logger.Info().Int("discarded_sessions", discarded).Msg("Manager shutdown complete.")
}
