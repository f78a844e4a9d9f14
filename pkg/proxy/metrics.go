package proxy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts proxy responses by status code and measures how long
// they took. A nil *Metrics records nothing.
type Metrics struct {
	responses *prometheus.CounterVec
	fallbacks prometheus.Counter
	duration  prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imgpipe",
			Subsystem: "proxy",
			Name:      "responses_total",
			Help:      "Number of proxy responses by HTTP status code.",
		}, []string{"code"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imgpipe",
			Subsystem: "proxy",
			Name:      "fallback_responses_total",
			Help:      "Number of original images served because processing failed.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "imgpipe",
			Subsystem: "proxy",
			Name:      "response_duration_seconds",
			Help:      "Time spent handling proxy requests.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registerer.MustRegister(metrics.responses, metrics.fallbacks, metrics.duration)
	return metrics
}

func (m *Metrics) observe(w *observedResponseWriter, started time.Time) {
	if m == nil {
		return
	}

	m.responses.WithLabelValues(strconv.Itoa(w.status)).Inc()
	if w.fallback {
		m.fallbacks.Inc()
	}

	m.duration.Observe(time.Since(started).Seconds())
}

type observedResponseWriter struct {
	ProxyResponseWriter
	status   int
	fallback bool
}

func (w *observedResponseWriter) WriteOK(contentType string, data []byte) {
	w.status = http.StatusOK
	w.ProxyResponseWriter.WriteOK(contentType, data)
}

func (w *observedResponseWriter) WriteError(code int, response *errors.ErrorResponse) {
	w.status = code
	w.ProxyResponseWriter.WriteError(code, response)
}

func (w *observedResponseWriter) WriteErrorWithFallback(response *errors.ErrorResponse, contentType string, fallbackImage []byte) {
	w.status = http.StatusOK
	w.fallback = true
	w.ProxyResponseWriter.WriteErrorWithFallback(response, contentType, fallbackImage)
}
