package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatTurnsTotal     *prometheus.CounterVec
	chatDegradedTotal  *prometheus.CounterVec
	chatCitations      *prometheus.HistogramVec
	chatTokensUsed     *prometheus.HistogramVec
	searchCallsTotal   *prometheus.CounterVec
	budgetRejectsTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floatchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "floatchat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "floatchat",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floatchat",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total completed chat turns by classified intent.",
		},
		[]string{"service", "intent"},
	)
	chatDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floatchat",
			Subsystem: "chat",
			Name:      "degraded_total",
			Help:      "Total chat turns answered without citations.",
		},
		[]string{"service"},
	)
	chatCitations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "floatchat",
			Subsystem: "chat",
			Name:      "citations",
			Help:      "Distribution of citations per chat turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	chatTokensUsed := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "floatchat",
			Subsystem: "chat",
			Name:      "tokens_used",
			Help:      "Distribution of estimated response tokens per chat turn.",
			Buckets:   []float64{100, 300, 600, 900, 1200, 1500, 1800},
		},
		[]string{"service"},
	)
	searchCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floatchat",
			Subsystem: "search",
			Name:      "calls_total",
			Help:      "Total search calls by chat turns, by outcome.",
		},
		[]string{"service", "status"},
	)
	budgetRejectsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floatchat",
			Subsystem: "search",
			Name:      "budget_rejections_total",
			Help:      "Total search calls rejected by the budget gate.",
		},
		[]string{"service", "endpoint"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatTurnsTotal,
		chatDegradedTotal,
		chatCitations,
		chatTokensUsed,
		searchCallsTotal,
		budgetRejectsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatTurnsTotal:     chatTurnsTotal,
		chatDegradedTotal:  chatDegradedTotal,
		chatCitations:      chatCitations,
		chatTokensUsed:     chatTokensUsed,
		searchCallsTotal:   searchCallsTotal,
		budgetRejectsTotal: budgetRejectsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordChatTurn(service, intent string, citations, tokensUsed, searchCalls int, degraded bool) {
	if intent == "" {
		intent = "unknown"
	}
	m.chatTurnsTotal.WithLabelValues(service, intent).Inc()
	m.chatCitations.WithLabelValues(service).Observe(float64(citations))
	m.chatTokensUsed.WithLabelValues(service).Observe(float64(tokensUsed))
	if searchCalls > 0 {
		m.searchCallsTotal.WithLabelValues(service, "attempted").Add(float64(searchCalls))
	}
	if degraded {
		m.chatDegradedTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordSearchOutcome(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.searchCallsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordBudgetRejection(service, endpoint string) {
	m.budgetRejectsTotal.WithLabelValues(service, endpoint).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
