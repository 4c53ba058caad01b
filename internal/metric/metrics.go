package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations by operation",
	}, []string{"operation"})

	// Sessions currently held in memory
	CartSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "sessions",
		Help:      "Cart sessions held in memory",
	})

	PersistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "persistence_failures_total",
		Help:      "Cart save/load failures that were logged and ignored",
	}, []string{"operation"}) // save / load

	CouponValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "coupon",
		Name:      "validations_total",
		Help:      "Coupon validations by outcome",
	}, []string{"result"}) // valid or a rejection reason

	SettingsRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "settings",
		Name:      "refresh_total",
		Help:      "Store settings refresh attempts",
	}, []string{"status"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Managed backend request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"table", "status"})

	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "storefront",
		Subsystem:  "http",
		Name:       "request_duration_seconds",
		Help:       "HTTP request latency",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"status"})
)

func ObserveRequest(t time.Duration, status int) {
	RequestMetrics.WithLabelValues(strconv.Itoa(status)).Observe(t.Seconds())
}
