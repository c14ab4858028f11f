package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "mcptap_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "proxy"},
		},
		[]string{"date", "sha", "version"},
	)

	linesRelayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcptap_lines_relayed_total",
			Help: "Lines relayed through the proxy",
		},
		[]string{"direction"},
	)

	bytesRelayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcptap_bytes_relayed_total",
			Help: "Bytes relayed through the proxy",
		},
		[]string{"direction"},
	)

	requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcptap_request_duration_seconds",
			Help:    "Round-trip time between a request and its correlated response",
			Buckets: prometheus.DefBuckets,
		},
	)

	pendingCorrelations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcptap_pending_correlations",
			Help: "Requests still waiting for a correlated response",
		},
	)

	eventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mcptap_events_dropped_total",
			Help: "Telemetry events dropped after a failed batch send",
		},
	)

	commandsBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcptap_commands_blocked_total",
			Help: "Launch commands refused by a filter",
		},
		[]string{"filter"},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, linesRelayed, bytesRelayed, requestDuration, pendingCorrelations, eventsDropped, commandsBlocked)
}

// SetBuildInfo sets the build info metric for the proxy.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordLine counts one relayed line and its size.
func RecordLine(direction string, size int) {
	linesRelayed.WithLabelValues(direction).Inc()
	bytesRelayed.WithLabelValues(direction).Add(float64(size))
}

// ObserveRequestDuration records a correlated round trip.
func ObserveRequestDuration(d time.Duration) {
	requestDuration.Observe(d.Seconds())
}

// SetPendingCorrelations tracks the correlation map size.
func SetPendingCorrelations(n int) {
	pendingCorrelations.Set(float64(n))
}

// RecordEventsDropped counts telemetry events lost to a failed send.
func RecordEventsDropped(n int) {
	eventsDropped.Add(float64(n))
}

// RecordCommandBlocked counts a refused launch command.
func RecordCommandBlocked(filter string) {
	commandsBlocked.WithLabelValues(filter).Inc()
}
