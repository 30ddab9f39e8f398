// Package metrics — коллекторы Prometheus и инструментирование HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry — реестр коллекторов приложения.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rewear",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewear",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rewear",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	exchangeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewear",
			Subsystem: "exchange",
			Name:      "operations_total",
			Help:      "Exchange operations (redeem, swap handshake) by result.",
		},
		[]string{"operation", "result"},
	)

	pointsSpent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rewear",
			Subsystem: "exchange",
			Name:      "points_spent_total",
			Help:      "Total points spent on redemptions.",
		},
	)

	moderationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewear",
			Subsystem: "moderation",
			Name:      "actions_total",
			Help:      "Moderation actions applied by admins.",
		},
		[]string{"action"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewear",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Notification emails by kind and delivery result.",
		},
		[]string{"kind", "success"},
	)

	inconsistencies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rewear",
			Subsystem: "reconcile",
			Name:      "findings",
			Help:      "Inconsistencies found by the last reconciliation pass.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewear",
			Subsystem: "cache",
			Name:      "catalog_lookups_total",
			Help:      "Catalog cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		exchangeOps,
		pointsSpent,
		moderationActions,
		notifications,
		inconsistencies,
		cacheLookups,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler отдаёт метрики реестра в формате Prometheus.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler оборачивает обработчик сбором HTTP-метрик.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := routePattern(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordExchange учитывает операцию обмена; result — "ok" или короткий код ошибки.
func RecordExchange(operation, result string) {
	exchangeOps.WithLabelValues(operation, result).Inc()
}

// RecordPointsSpent учитывает списанные при выкупе очки.
func RecordPointsSpent(points int64) {
	if points > 0 {
		pointsSpent.Add(float64(points))
	}
}

func RecordModeration(action string) {
	moderationActions.WithLabelValues(action).Inc()
}

func RecordNotification(kind string, success bool) {
	notifications.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

// SetInconsistencies выставляет число находок последней сверки.
func SetInconsistencies(n int) {
	inconsistencies.Set(float64(n))
}

// RecordCacheLookup: hit, miss или error.
func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// routePattern берёт шаблон маршрута chi, чтобы id не раздували кардинальность меток.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return canonicalPath(r.URL.Path)
}

func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 && parts[0] == "api" {
		return "/api/" + parts[1]
	}
	return "/" + parts[0]
}
