package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	probesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sender_probes_total",
			Help: "Total number of sender credential test probes",
		},
		[]string{"provider", "status"},
	)

	campaignsActivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_activated_total",
			Help: "Total number of campaign activations",
		},
	)

	sendersPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campaign_senders_pruned_total",
			Help: "Sender entries pruned from campaigns after credential changes",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordProbe(provider, status string) {
	probesSent.WithLabelValues(provider, status).Inc()
}

func RecordCampaignActivation() {
	campaignsActivated.Inc()
}

func RecordSendersPruned(n int) {
	if n > 0 {
		sendersPruned.Add(float64(n))
	}
}
