package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "rotcurve"

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

var ArchiveLoads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_loads_total",
		Help:      "Archive loads by outcome.",
	},
	[]string{"outcome"},
)

var Members = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "members_total",
		Help:      "Archive members processed, split into parsed and failed.",
	},
	[]string{"outcome"},
)

var Rows = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_total",
		Help:      "Data lines kept or dropped while parsing and normalizing members.",
	},
	[]string{"outcome"},
)

var RemoteCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Calls to the compute backend by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

var RemoteCallSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_seconds",
		Help:      "Latency of calls to the compute backend.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	},
	[]string{"endpoint"},
)

func init() {
	prometheus.MustRegister(ArchiveLoads)
	prometheus.MustRegister(Members)
	prometheus.MustRegister(Rows)
	prometheus.MustRegister(RemoteCalls)
	prometheus.MustRegister(RemoteCallSeconds)
}
