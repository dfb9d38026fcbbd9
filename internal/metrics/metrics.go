package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the agent.
    Registry = prometheus.NewRegistry()

    // QueueDepth is the current number of pending offline operations.
    QueueDepth = prometheus.NewGauge(
        prometheus.GaugeOpts{Name: "offline_queue_depth", Help: "Pending operations in the offline queue."},
    )
    QueueEnqueued = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "offline_queue_enqueued_total", Help: "Operations handed to the offline queue."},
    )
    QueueDelivered = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "offline_queue_delivered_total", Help: "Queued operations replayed successfully."},
    )
    QueueRetried = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "offline_queue_retried_total", Help: "Failed replay attempts left for a later drain."},
    )
    QueueDropped = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "offline_queue_dropped_total", Help: "Operations dropped after exhausting retries."},
    )

    // Samples counts tracked location samples by delivery path.
    Samples = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "location_samples_total", Help: "Location samples by outcome."},
        []string{"outcome"}, // delivered, queued, dropped
    )
    // UpdateLatency tracks live trip-location POST latencies in milliseconds.
    UpdateLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "trip_update_latency_ms", Help: "Live location update latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
    )
)

// RegisterDefault registers collectors on the agent registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(QueueDepth)
        Registry.MustRegister(QueueEnqueued)
        Registry.MustRegister(QueueDelivered)
        Registry.MustRegister(QueueRetried)
        Registry.MustRegister(QueueDropped)
        Registry.MustRegister(Samples)
        Registry.MustRegister(UpdateLatency)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
