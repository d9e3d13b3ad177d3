/*
Package metrics exposes Prometheus collectors describing relay activity.

Collectors are registered on the default registry at init and served by Handler.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relaychat"

var (
	// Connections is the number of open WebSocket connections.
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Open WebSocket connections.",
	})

	// SessionUsers is the number of connections that have joined a room.
	SessionUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_users",
		Help:      "Users currently joined to a room.",
	})

	// Joins counts successful joins.
	Joins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "joins_total",
		Help:      "Successful room joins.",
	})

	// Messages counts accepted chat events by kind ("text", "location").
	Messages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "Accepted chat messages by kind.",
	}, []string{"kind"})

	// Rejections counts failed requests by error code.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejections_total",
		Help:      "Rejected client requests by error code.",
	}, []string{"event", "code"})

	// Deliveries counts queued outbound frames.
	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Outbound frames queued to connections.",
	})

	// DroppedConnections counts connections force-closed by the relay.
	DroppedConnections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_connections_total",
		Help:      "Connections closed by the relay, e.g. on send queue overflow.",
	})

	// Dropped counts outbound frames dropped because a connection's queue was full.
	Dropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_total",
		Help:      "Outbound frames dropped on full connection queues.",
	})
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
