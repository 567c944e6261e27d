package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transport counters, labeled by RPC program number where the distinction
// matters. Registered on the default registry; the library never exposes
// them itself.
var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfsclient",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "RPC calls that completed with an accepted SUCCESS reply.",
	}, []string{"program"})

	callErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfsclient",
		Subsystem: "rpc",
		Name:      "call_errors_total",
		Help:      "RPC calls that failed at the transport or envelope layer.",
	}, []string{"program"})

	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nfsclient",
		Subsystem: "rpc",
		Name:      "bytes_sent_total",
		Help:      "Bytes written to RPC transports, including record marks.",
	})

	bytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nfsclient",
		Subsystem: "rpc",
		Name:      "bytes_received_total",
		Help:      "Bytes read from RPC transports, excluding record marks.",
	})
)
