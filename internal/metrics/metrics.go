// Package metrics exposes the latest samples as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dicklesworthstone/sysmonitor/internal/model"
)

// Sample results used as the "result" label of sysmonitor_samples_total.
const (
	ResultBaseline = "baseline"
	ResultOK       = "ok"
	ResultReset    = "reset"
	ResultError    = "error"
)

// Metrics holds a private registry so several instances never collide.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	cpuUsage prometheus.Gauge
	memUsed  prometheus.Gauge
	samples  *prometheus.CounterVec
	handler  http.Handler
}

// New creates and registers the sysmonitor collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmonitor_cpu_usage_percent",
			Help: "Busy share of CPU time between the last two samples.",
		}),
		memUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysmonitor_memory_used_percent",
			Help: "Used share of physical memory at the last reading.",
		}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sysmonitor_samples_total",
			Help: "CPU sampling cycles by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.cpuUsage, m.memUsed, m.samples, collectors.NewGoCollector())
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// ObserveUsage records one sampler result.
func (m *Metrics) ObserveUsage(u model.Usage) {
	if m == nil {
		return
	}
	switch {
	case !u.Available:
		m.samples.WithLabelValues(ResultBaseline).Inc()
	case u.Reset:
		m.samples.WithLabelValues(ResultReset).Inc()
		m.cpuUsage.Set(u.Percent)
	default:
		m.samples.WithLabelValues(ResultOK).Inc()
		m.cpuUsage.Set(u.Percent)
	}
}

// ObserveError records an abandoned sampling cycle.
func (m *Metrics) ObserveError() {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(ResultError).Inc()
}

// ObserveMemory records a memory reading.
func (m *Metrics) ObserveMemory(mem model.Memory) {
	if m == nil {
		return
	}
	m.memUsed.Set(mem.UsedPercent())
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler { return m.handler }

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
