// Package metrics exports registry activity as Prometheus metrics. The
// Collector is a registry event listener; it never calls back into the
// registry except through the stats function it was given.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quiver/internal/api"
	"quiver/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quiver"

// Collector collects and exposes registry metrics on its own Prometheus
// registry.
type Collector struct {
	registry *prometheus.Registry

	events            *prometheus.CounterVec
	executions        *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
}

// NewCollector creates a collector. stats, when non-nil, backs the
// quiver_registry_entries gauges and is read at scrape time.
func NewCollector(stats func() api.Stats) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "events_total",
			Help:      "Registry events by type",
		}, []string{"event"}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Tool and prompt executions by entry type, name and outcome",
		}, []string{"type", "name", "outcome"}),
		executionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Handler execution time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type", "outcome"}),
	}

	c.registry.MustRegister(c.events, c.executions, c.executionDuration)

	if stats != nil {
		for _, t := range []api.EntryType{api.EntryTypeTool, api.EntryTypePrompt} {
			entryType := t
			c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "registry",
				Name:        "entries",
				Help:        "Registered entries by type",
				ConstLabels: prometheus.Labels{"type": string(entryType)},
			}, func() float64 {
				s := stats()
				if entryType == api.EntryTypeTool {
					return float64(s.ToolsCount)
				}
				return float64(s.PromptsCount)
			}))
		}
	}
	return c
}

// OnRegistryEvent implements api.EventListener.
func (c *Collector) OnRegistryEvent(e api.Event) {
	c.events.WithLabelValues(string(e.Type)).Inc()

	var outcome string
	switch e.Type {
	case api.EventToolExecuted, api.EventPromptExecuted:
		outcome = "success"
	case api.EventToolFailed, api.EventPromptFailed:
		outcome = "failure"
	default:
		return
	}
	c.executions.WithLabelValues(string(e.EntryType), e.Name, outcome).Inc()
	c.executionDuration.WithLabelValues(string(e.EntryType), outcome).Observe(e.Duration.Seconds())
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes Handler at path on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Metrics", "Serving metrics on http://%s%s", addr, path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
