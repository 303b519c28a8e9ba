package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Booking metrics
var (
	SeatHoldsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_holds_total",
			Help: "Total number of seat hold attempts by result.",
		},
		[]string{"result"},
	)

	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of orders by status.",
		},
		[]string{"status"},
	)

	TicketsSoldTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Total number of seats sold.",
		},
	)

	BookingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_events_total",
			Help: "Booking confirmation events by direction and result.",
		},
		[]string{"direction", "result"},
	)
)

// Movie cache metrics
var (
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_cache_hits_total",
			Help: "Total number of movie cache hits.",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_cache_misses_total",
			Help: "Total number of movie cache misses.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SeatHoldsTotal,
		OrdersTotal,
		TicketsSoldTotal,
		BookingEventsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}
