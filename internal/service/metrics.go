package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess       = "success"
	outcomeValidation    = "validation_error"
	outcomeNoToken       = "gateway_protocol_error"
	outcomeTransport     = "transport_error"
	outcomeInternalError = "internal_error"
)

var (
	tokenRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_token_requests_total",
		Help: "Hosted payment token requests by outcome.",
	}, []string{"outcome"})

	gatewayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_gateway_request_duration_seconds",
		Help:    "Latency of the outbound hosted payment page call.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
	})
)
