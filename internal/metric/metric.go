package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FactsIngested counts facts accepted from producers, labeled by fact kind
// ("entity" or "relationship").
var FactsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "caseboard",
	Subsystem: "ingest",
	Name:      "facts_total",
	Help:      "Facts consumed from ingestion sessions, by kind.",
}, []string{"kind"})

// FactsDropped counts facts that never reached the graph, labeled by reason
// ("malformed", "unresolved", "self_loop", "duplicate", "overflow").
var FactsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "caseboard",
	Subsystem: "ingest",
	Name:      "facts_dropped_total",
	Help:      "Facts dropped before or during graph integration, by reason.",
}, []string{"reason"})

// SessionsActive tracks ingestion sessions currently consuming events.
var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "caseboard",
	Subsystem: "ingest",
	Name:      "sessions_active",
	Help:      "Ingestion sessions currently running.",
})

// GraphMutations counts mutations applied through the HTTP surface.
var GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "caseboard",
	Subsystem: "graph",
	Name:      "mutations_total",
	Help:      "Graph mutations applied, by operation.",
}, []string{"operation"})
