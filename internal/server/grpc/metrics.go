package grpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication enforcement metrics.
var (
	authFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authcore_auth_failures_total",
			Help: "Authentication failures by reason",
		},
		[]string{"reason"}, // missing, expired, invalid, revoked, theft, store
	)

	theftSignalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authcore_token_theft_signals_total",
			Help: "Refresh token reuse and revoked-family detections",
		},
	)

	authzDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authcore_authz_denied_total",
			Help: "Requests denied by role or tenant checks",
		},
	)
)
