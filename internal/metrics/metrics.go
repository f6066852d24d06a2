package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tunibet"

// Metrics - коллекторы сервиса
type Metrics struct {
	BetsPlaced      prometheus.Counter
	BetsAccepted    prometheus.Counter
	AcceptConflicts prometheus.Counter
	StoreErrors     *prometheus.CounterVec
	EventFailures   *prometheus.CounterVec
	OpenListings    prometheus.Gauge
	SoldListings    prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New создаёт и регистрирует коллекторы в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BetsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bets_placed_total",
			Help: "Bets successfully placed.",
		}),
		BetsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bets_accepted_total",
			Help: "Bets accepted; each marks a car as sold.",
		}),
		AcceptConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bet_accept_conflicts_total",
			Help: "Accept attempts rejected because the car was already sold.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "store_errors_total",
			Help: "Persistence failures by operation.",
		}, []string{"op"}),
		EventFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "event_publish_failures_total",
			Help: "Domain events that could not be published, by sink.",
		}, []string{"sink"}),
		OpenListings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "listings_open",
			Help: "Cars currently accepting bets.",
		}),
		SoldListings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "listings_sold",
			Help: "Cars sold through an accepted bet.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.BetsPlaced, m.BetsAccepted, m.AcceptConflicts, m.StoreErrors, m.EventFailures,
		m.OpenListings, m.SoldListings, m.httpRequests, m.httpDuration,
	)
	return m
}

// Middleware считает запросы по шаблону маршрута chi (не по сырому пути)
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
