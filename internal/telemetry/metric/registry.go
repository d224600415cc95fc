package metric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/respkv/internal/storage/memory"
)

const namespace = "respkv"

// Registry holds all server metrics.
type Registry struct {
	reg *prometheus.Registry

	CommandsTotal       *prometheus.CounterVec
	ProtocolErrorsTotal prometheus.Counter
	ConnectionsTotal    prometheus.Counter
	RejectedTotal       *prometheus.CounterVec
	ConnectedClients    prometheus.Gauge

	Keys         prometheus.Gauge
	Expires      prometheus.Gauge
	UsedMemory   prometheus.Gauge
	MaxMemory    prometheus.Gauge
	EvictedTotal prometheus.Counter
	ExpiredTotal prometheus.Counter
	AOFEnabled   prometheus.Gauge
	AOFLastFsync prometheus.Gauge

	// Store counters are cumulative; only the growth since the previous
	// observation is added to the Prometheus counters.
	mu          sync.Mutex
	lastEvicted uint64
	lastExpired uint64
}

// NewRegistry creates a registry with every server metric registered, plus
// the Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command name and outcome.",
		}, []string{"command", "failed"}),
		ProtocolErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Malformed RESP frames received.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Client connections accepted.",
		}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Client connections rejected, by reason.",
		}, []string{"reason"}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Currently connected clients.",
		}),

		Keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys",
			Help:      "Keys in the store, including expired keys not yet removed.",
		}),
		Expires: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expires",
			Help:      "Keys with a TTL.",
		}),
		UsedMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "used_memory_bytes",
			Help:      "Estimated memory used by stored entries.",
		}),
		MaxMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "maxmemory_bytes",
			Help:      "Configured memory budget; 0 means unlimited.",
		}),
		EvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_keys_total",
			Help:      "Keys evicted to stay within the memory budget.",
		}),
		ExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_keys_total",
			Help:      "Keys removed after their TTL passed.",
		}),
		AOFEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aof_enabled",
			Help:      "1 when the append-only file is active.",
		}),
		AOFLastFsync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aof_last_fsync_timestamp_seconds",
			Help:      "Unix time of the last successful AOF fsync.",
		}),
	}

	r.reg.MustRegister(
		r.CommandsTotal,
		r.ProtocolErrorsTotal,
		r.ConnectionsTotal,
		r.RejectedTotal,
		r.ConnectedClients,
		r.Keys,
		r.Expires,
		r.UsedMemory,
		r.MaxMemory,
		r.EvictedTotal,
		r.ExpiredTotal,
		r.AOFEnabled,
		r.AOFLastFsync,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Gatherer returns the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// CommandProcessed counts one executed command.
func (r *Registry) CommandProcessed(name string, failed bool) {
	r.CommandsTotal.WithLabelValues(name, strconv.FormatBool(failed)).Inc()
}

// ProtocolError counts one malformed frame.
func (r *Registry) ProtocolError() {
	r.ProtocolErrorsTotal.Inc()
}

// ConnectionAccepted counts one accepted connection.
func (r *Registry) ConnectionAccepted() {
	r.ConnectionsTotal.Inc()
}

// ConnectionRejected counts one rejected connection.
func (r *Registry) ConnectionRejected(reason string) {
	r.RejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveClients records the connected client count.
func (r *Registry) ObserveClients(n int) {
	r.ConnectedClients.Set(float64(n))
}

// ObserveStore records a snapshot of store counters.
func (r *Registry) ObserveStore(st memory.Stats) {
	r.Keys.Set(float64(st.Keys))
	r.Expires.Set(float64(st.Expires))
	r.UsedMemory.Set(float64(st.EstimatedMemory))
	r.MaxMemory.Set(float64(st.MemoryLimit))

	r.mu.Lock()
	defer r.mu.Unlock()
	if st.EvictionsTotal > r.lastEvicted {
		r.EvictedTotal.Add(float64(st.EvictionsTotal - r.lastEvicted))
	}
	r.lastEvicted = st.EvictionsTotal
	if st.ExpiredTotal > r.lastExpired {
		r.ExpiredTotal.Add(float64(st.ExpiredTotal - r.lastExpired))
	}
	r.lastExpired = st.ExpiredTotal
}

// ObserveAOF records persistence state. A zero lastFsync leaves the
// timestamp gauge unchanged.
func (r *Registry) ObserveAOF(enabled bool, lastFsync time.Time) {
	if enabled {
		r.AOFEnabled.Set(1)
	} else {
		r.AOFEnabled.Set(0)
	}
	if !lastFsync.IsZero() {
		r.AOFLastFsync.Set(float64(lastFsync.UnixMilli()) / 1000)
	}
}
