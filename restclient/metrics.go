// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hps",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "HTTP requests sent to the HPS service",
	},
	[]string{
		"method",
		"code",
	},
)

var tokenRefreshesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hps",
		Subsystem: "client",
		Name:      "token_refreshes_total",
		Help:      "Access token refreshes",
	},
	[]string{
		"grant",
	},
)

var operationPollsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hps",
		Subsystem: "client",
		Name:      "operation_polls_total",
		Help:      "Polls of long-running operations",
	},
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(tokenRefreshesTotal)
	prometheus.MustRegister(operationPollsTotal)
}
