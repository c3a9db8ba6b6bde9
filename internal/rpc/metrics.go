package rpc

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK             = "ok"
	outcomeRPCError       = "rpc_error"
	outcomeTransportError = "transport_error"
)

var (
	callsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txengine",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "JSON-RPC calls by method and outcome.",
	}, []string{"method", "outcome"})

	callDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "txengine",
		Subsystem: "rpc",
		Name:      "call_duration_seconds",
		Help:      "JSON-RPC call latency by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

// RegisterMetrics installs the transport collectors into reg. Registering twice is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{callsTotal, callDuration} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return errors.Wrap(err, "failed to register rpc metrics")
		}
	}
	return nil
}

func observeCall(method string, started time.Time, err error) {
	outcome := outcomeOK
	switch {
	case err == nil:
	case IsTransport(err):
		outcome = outcomeTransportError
	default:
		outcome = outcomeRPCError
	}

	callsTotal.WithLabelValues(method, outcome).Inc()
	callDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
