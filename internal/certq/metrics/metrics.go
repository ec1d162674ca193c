// Package metrics exposes Prometheus metrics for check runs. All
// collectors live on a private registry served at /metrics when a
// metrics address is configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jacoelho/certq/internal/certq/capture"
	"github.com/jacoelho/certq/internal/certq/clock"
)

// Metrics records what a run observed: request volume, per-file
// outcomes, and the validity window of every peer certificate seen.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestFailures prometheus.Counter
	filesTotal      *prometheus.CounterVec
	fileDuration    prometheus.Histogram
	certExpiry      *prometheus.GaugeVec
	certNotAfter    *prometheus.GaugeVec
}

// New builds a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certq_http_requests_total",
			Help: "HTTP requests issued by check steps.",
		}, []string{"method"}),
		requestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certq_http_request_failures_total",
			Help: "Check requests that failed before a response was read.",
		}),
		filesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certq_check_files_total",
			Help: "Executed check files by result.",
		}, []string{"result"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "certq_check_file_duration_seconds",
			Help:    "Wall-clock time spent executing one check file.",
			Buckets: prometheus.DefBuckets,
		}),
		certExpiry: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "certq_certificate_expiry_seconds",
			Help: "Seconds until the peer certificate expires, zero once expired.",
		}, []string{"host"}),
		certNotAfter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "certq_certificate_not_after_timestamp_seconds",
			Help: "Peer certificate expiry as seconds since the Unix epoch.",
		}, []string{"host", "serial_number"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.requestsTotal,
		m.requestFailures,
		m.filesTotal,
		m.fileDuration,
		m.certExpiry,
		m.certNotAfter,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFile records the outcome of one executed check file.
func (m *Metrics) ObserveFile(duration time.Duration, err error) {
	if m == nil {
		return
	}

	result := "pass"
	if err != nil {
		result = "fail"
	}
	m.filesTotal.WithLabelValues(result).Inc()
	m.fileDuration.Observe(duration.Seconds())
}

// ObserveRequestFailure records a request that produced no response.
func (m *Metrics) ObserveRequestFailure() {
	if m == nil {
		return
	}
	m.requestFailures.Inc()
}

// ObserveResponse counts the request and, for https responses, records
// the peer certificate's remaining lifetime. The certificate metadata
// goes through the same text pipeline the assertions use, so the gauge
// reflects exactly what a check would see.
func (m *Metrics) ObserveResponse(resp *http.Response) {
	if m == nil || resp == nil {
		return
	}

	method := http.MethodGet
	if resp.Request != nil && resp.Request.Method != "" {
		method = resp.Request.Method
	}
	m.requestsTotal.WithLabelValues(method).Inc()

	record, err := capture.ExtractAllCertificateFields(resp)
	if err != nil {
		return
	}

	host := ""
	if resp.Request != nil && resp.Request.URL != nil {
		host = resp.Request.URL.Hostname()
	}
	if host == "" {
		return
	}

	remaining := record.ExpireDate.Sub(clock.Now()).Seconds()
	if remaining < 0 {
		remaining = 0
	}
	m.certExpiry.WithLabelValues(host).Set(remaining)
	m.certNotAfter.WithLabelValues(host, record.SerialNumber).Set(float64(record.ExpireDate.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, m *Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
