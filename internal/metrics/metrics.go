// Package metrics collects storage and pass counters in a private Prometheus
// registry. Nothing is served over HTTP; WriteTextfile exports a snapshot in
// the node_exporter textfile format at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pebblestore "github.com/WholesumNet/block-feeder/internal/storage/pebble"
)

const namespace = "blockfeeder"

// Registry groups every collector of one process.
type Registry struct {
	reg *prometheus.Registry

	storageLatency *prometheus.HistogramVec
	storageBytes   *prometheus.CounterVec

	EntriesAppended prometheus.Counter
	PayloadBytes    prometheus.Counter
	BlocksWritten   prometheus.Counter
	EntriesRead     prometheus.Counter
	PassDuration    *prometheus.HistogramVec
}

// New builds and registers all collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		storageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "op_duration_seconds",
			Help:      "Latency of storage operations.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}, []string{"op"}),
		storageBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "bytes_total",
			Help:      "Bytes moved by storage operations.",
		}, []string{"op"}),
		EntriesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_appended_total",
			Help:      "Log entries appended by write passes.",
		}),
		PayloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_bytes_total",
			Help:      "Payload bytes appended by write passes.",
		}),
		BlocksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_written_total",
			Help:      "Blocks fully appended by write passes.",
		}),
		EntriesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_read_total",
			Help:      "Log entries decoded by read passes.",
		}),
		PassDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of write and read passes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pass"}),
	}
	r.reg.MustRegister(
		r.storageLatency,
		r.storageBytes,
		r.EntriesAppended,
		r.PayloadBytes,
		r.BlocksWritten,
		r.EntriesRead,
		r.PassDuration,
	)
	return r
}

// Gatherer exposes the registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile atomically writes the current values to path.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

// Storage returns a hook recording pebble operations into r.
func (r *Registry) Storage() pebblestore.MetricsHook { return storageHook{r} }

type storageHook struct{ r *Registry }

func (h storageHook) ObserveWrite(elapsed time.Duration, bytes int) {
	h.r.storageLatency.WithLabelValues("write").Observe(elapsed.Seconds())
	h.r.storageBytes.WithLabelValues("write").Add(float64(bytes))
}

func (h storageHook) ObserveRead(elapsed time.Duration, bytes int) {
	h.r.storageLatency.WithLabelValues("read").Observe(elapsed.Seconds())
	h.r.storageBytes.WithLabelValues("read").Add(float64(bytes))
}

func (h storageHook) ObserveBatchCommit(elapsed time.Duration, _ int, bytes int) {
	h.r.storageLatency.WithLabelValues("commit").Observe(elapsed.Seconds())
	h.r.storageBytes.WithLabelValues("commit").Add(float64(bytes))
}
