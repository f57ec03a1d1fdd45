// Package metrics holds the prometheus collectors for the store and the fiber
// middleware that feeds the HTTP ones.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts HTTP requests by route and status.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StoreMutations counts cart and quote mutations by store and operation.
	StoreMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Cart and quote mutations",
		},
		[]string{"store", "op"},
	)

	// StoreResets counts stores that came back empty because their saved
	// state could not be read.
	StoreResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_resets_total",
			Help: "Stores reset to empty on restore",
		},
		[]string{"store"},
	)

	BrowseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_browse_duration_seconds",
			Help:    "Time spent filtering, sorting and counting a listing",
			Buckets: prometheus.DefBuckets,
		},
	)

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed through checkout",
	})

	QuotesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotes_submitted_total",
		Help: "Quote requests submitted",
	})
)

var once sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			StoreMutations,
			StoreResets,
			BrowseDuration,
			OrdersPlaced,
			QuotesSubmitted,
		)
	})
}

// Middleware records request count and latency. The path label is the
// matched route pattern so ids do not blow up cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		statusStr := strconv.Itoa(status)
		RequestCounter.WithLabelValues(c.Method(), path, statusStr).Inc()
		RequestDuration.WithLabelValues(c.Method(), path, statusStr).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry in the prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
