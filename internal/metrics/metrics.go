package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "customerbooking"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking lifecycle operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	outboxDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_deliveries_total",
			Help:      "Outbox delivery attempts by outcome.",
		},
		[]string{"result"},
	)

	sheetsSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_syncs_total",
			Help:      "Spreadsheet mirror updates by outcome.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingOps, outboxDeliveries, sheetsSyncs)
	})
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordBookingOp counts a lifecycle call. result is "ok", "not_found" or "error".
func RecordBookingOp(operation, result string) {
	bookingOps.WithLabelValues(operation, result).Inc()
}

// RecordOutboxDelivery counts a delivery outcome: "delivered", "retry" or "failed".
func RecordOutboxDelivery(result string) {
	outboxDeliveries.WithLabelValues(result).Inc()
}

// RecordSheetsSync counts a mirror outcome: "ok", "retry", "failed" or "dropped".
func RecordSheetsSync(result string) {
	sheetsSyncs.WithLabelValues(result).Inc()
}
