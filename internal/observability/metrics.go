// Package observability holds Prometheus metrics for the application.
// Request-level metrics come from the fiberprometheus middleware; the
// counters here track domain events the middleware cannot see.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GraphMutations counts follow/unfollow/like/unlike toggles.
	GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flock_graph_mutations_total",
		Help: "Total social graph mutations by relation and direction",
	}, []string{"relation", "direction"})

	// PartialWriteFailures counts graph mutations that failed after the
	// first of their per-document writes succeeded, leaving the
	// denormalized pair inconsistent.
	PartialWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flock_graph_partial_write_failures_total",
		Help: "Graph mutations left inconsistent by a failed second write",
	}, []string{"relation"})

	// NotificationsEmitted counts notifications created by graph mutations.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flock_notifications_emitted_total",
		Help: "Notifications emitted as graph mutation side effects",
	}, []string{"type"})
)
