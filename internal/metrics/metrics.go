package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	fetchesTotal      *prometheus.CounterVec
	fetchDuration     prometheus.Histogram
	fetchedRows       prometheus.Gauge
	refreshesTotal    *prometheus.CounterVec
	presenterRows     prometheus.Gauge
	notificationsOpen *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_fetches_total",
			Help: "Total number of signal list fetches",
		},
		[]string{"result"},
	)
	r.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signals_fetch_duration_seconds",
			Help:    "Signal list fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	r.fetchedRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signals_fetched_rows",
			Help: "Number of records in the last successful fetch",
		},
	)
	r.refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_refreshes_total",
			Help: "Total number of refresh triggers by outcome",
		},
		[]string{"trigger", "outcome"},
	)
	r.presenterRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signals_presenter_rows",
			Help: "Number of rows currently presented",
		},
	)
	r.notificationsOpen = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_notifications_total",
			Help: "Total number of push notifications received",
		},
		[]string{"result"},
	)

	reg.MustRegister(r.fetchesTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.fetchedRows)
	reg.MustRegister(r.refreshesTotal)
	reg.MustRegister(r.presenterRows)
	reg.MustRegister(r.notificationsOpen)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// ObserveFetch records one signal list fetch.
func (r *Registry) ObserveFetch(duration time.Duration, rows int, err error) {
	r.fetchDuration.Observe(duration.Seconds())
	if err != nil {
		r.fetchesTotal.WithLabelValues("failure").Inc()
		return
	}
	r.fetchesTotal.WithLabelValues("success").Inc()
	r.fetchedRows.Set(float64(rows))
}

// RecordRefresh counts a refresh trigger and what became of it.
func (r *Registry) RecordRefresh(trigger, outcome string) {
	r.refreshesTotal.WithLabelValues(trigger, outcome).Inc()
}

// SetPresenterRows sets the number of presented rows.
func (r *Registry) SetPresenterRows(rows int) {
	r.presenterRows.Set(float64(rows))
}

// RecordNotification counts a delivered notification.
func (r *Registry) RecordNotification(shown bool) {
	if shown {
		r.notificationsOpen.WithLabelValues("shown").Inc()
		return
	}
	r.notificationsOpen.WithLabelValues("ignored").Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
