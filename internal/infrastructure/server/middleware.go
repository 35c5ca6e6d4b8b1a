package server

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskmaster/board/internal/ports"
)

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		newRecordCollector(s.store, s.logger.Warnw),
	)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(time.Since(start).Seconds())

			return err
		}
	})

	s.echo.GET(s.config.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// recordCollector exports the number of records per collection at scrape time
type recordCollector struct {
	store ports.RecordStore
	warn  func(msg string, keysAndValues ...interface{})
	desc  *prometheus.Desc
}

func newRecordCollector(store ports.RecordStore, warn func(string, ...interface{})) *recordCollector {
	return &recordCollector{
		store: store,
		warn:  warn,
		desc: prometheus.NewDesc(
			"board_records",
			"Number of records stored per collection",
			[]string{"collection"},
			nil,
		),
	}
}

func (rc *recordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rc.desc
}

func (rc *recordCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc, err := rc.store.Snapshot(ctx)
	if err != nil {
		rc.warn("Record metrics unavailable", "error", err)
		return
	}

	for _, name := range doc.Names() {
		ch <- prometheus.MustNewConstMetric(rc.desc, prometheus.GaugeValue, float64(len(doc[name])), name)
	}
}
