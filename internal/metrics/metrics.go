// Package metrics provides Prometheus metrics for the valetkey client.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several clients (and tests) never
// collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	uploadsTotal   *prometheus.CounterVec
	uploadFailures *prometheus.CounterVec
	uploadBytes    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valetkey_client_requests_total",
				Help: "Total number of outgoing HTTP requests",
			},
			[]string{"code", "method"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valetkey_client_request_duration_seconds",
				Help:    "Outgoing HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "valetkey_client_in_flight_requests",
				Help: "Number of outgoing HTTP requests in flight",
			},
		),
		uploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valetkey_upload_total",
				Help: "Total number of finished uploads",
			},
			[]string{"result"},
		),
		uploadFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valetkey_upload_failures_total",
				Help: "Failed uploads by the step that failed",
			},
			[]string{"step"},
		),
		uploadBytes: f.NewCounter(
			prometheus.CounterOpts{
				Name: "valetkey_upload_bytes_total",
				Help: "Total bytes of confirmed uploads",
			},
		),
	}
}

// InstrumentTransport wraps next so every request is counted and timed.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.requestDuration, next),
		),
	)
}

func (m *Metrics) UploadSucceeded(bytes int64) {
	m.uploadsTotal.WithLabelValues("success").Inc()
	m.uploadBytes.Add(float64(bytes))
}

func (m *Metrics) UploadFailed(step string) {
	m.uploadsTotal.WithLabelValues("failure").Inc()
	m.uploadFailures.WithLabelValues(step).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.serve(ctx, ln)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
