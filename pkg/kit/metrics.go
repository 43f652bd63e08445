package kit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelService = "service"
	labelMethod  = "method"
	labelPath    = "path"
	labelStatus  = "status"
)

type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelService, labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{labelService, labelMethod, labelPath},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served",
		}),
	}

	reg.MustRegister(m.Requests, m.Latency, m.InFlight)
	return m
}

// RoutePattern labels a request by its chi route pattern so that
// /products/1 and /products/2 share a series.
func RoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if rp := rc.RoutePattern(); rp != "" {
			return rp
		}
	}
	return "unmatched"
}

func (m *Metrics) Middleware(service string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			m.InFlight.Inc()
			start := time.Now()
			next.ServeHTTP(ww, r)
			m.InFlight.Dec()

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			path := pathLabel(r)
			m.Latency.WithLabelValues(service, r.Method, path).
				Observe(time.Since(start).Seconds())

			m.Requests.WithLabelValues(service, r.Method, path, strconv.Itoa(status)).
				Inc()
		})
	}
}
