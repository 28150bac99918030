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
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Domain
	ListingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_ops_total",
			Help: "Successful listing operations",
		},
		[]string{"op"}, // create|edit|delete
	)
	BookingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_ops_total",
			Help: "Successful booking operations",
		},
		[]string{"op"}, // create|delete
	)
	StorageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_ops_total",
			Help: "Storage adapter calls by outcome",
		},
		[]string{"op", "result"}, // upload|delete, ok|error
	)
	AvailabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_checks_total",
			Help: "Availability checks by result",
		},
		[]string{"result"}, // available|conflict
	)

	// Worker kuyruğu
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// /metrics endpoint'i için handler
var Handler = promhttp.Handler

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestsTotal, RequestLatency)
		prometheus.MustRegister(ListingOps, BookingOps, StorageOps, AvailabilityChecks)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}

func StorageResult(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StorageOps.WithLabelValues(op, result).Inc()
}
