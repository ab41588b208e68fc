package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Bookings
	BookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings created, by payment method",
		},
		[]string{"payment_method"},
	)

	// M-Pesa
	STKPushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpesa_stkpush_total",
			Help: "STK push attempts by outcome",
		},
		[]string{"outcome"}, // accepted|upstream_error|invalid
	)
	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpesa_callbacks_total",
			Help: "Processed M-Pesa callbacks by outcome",
		},
		[]string{"outcome"}, // completed|failed|duplicate|unknown|error
	)

	// Notifications
	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Notifications that could not be stored or pushed",
		},
		[]string{"stage"}, // persist|push
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			BookingsCreated,
			STKPushTotal,
			CallbacksTotal,
			NotificationFailures,
			WorkerQueueDepth,
		)
	})
}
