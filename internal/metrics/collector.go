package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourname/bloomhealth/internal/health"
)

const namespace = "bloom"

// Collector owns a private registry with the aggregator, session and HTTP
// metrics. It satisfies health.Recorder.
type Collector struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	pushes          *prometheus.CounterVec
	sessions        prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metric_fetches_total",
				Help:      "Completed metric fetches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		pushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_pushes_total",
				Help:      "Completed snapshot pushes by outcome",
			},
			[]string{"outcome"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of users with a live aggregator",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.fetches,
		c.pushes,
		c.sessions,
		c.httpRequests,
		c.httpRequestTime,
	)
	return c
}

func (c *Collector) FetchCompleted(kind health.Kind, outcome string) {
	c.fetches.WithLabelValues(string(kind), outcome).Inc()
}

func (c *Collector) PushCompleted(outcome string) {
	c.pushes.WithLabelValues(outcome).Inc()
}

func (c *Collector) SessionOpened() { c.sessions.Inc() }

func (c *Collector) SessionClosed() { c.sessions.Dec() }

// Middleware records request counts and latency per route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestTime.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

var _ health.Recorder = (*Collector)(nil)
