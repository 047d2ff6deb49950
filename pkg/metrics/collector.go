// Package metrics exposes tracker state and operation timings to Prometheus.
package metrics

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-tracked"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "tracked"

// Source is a tracker whose state can be scraped. Both tracked.Tracked and
// tracked.Masked implement it; only Masked is safe to scrape while other
// goroutines mutate it.
type Source interface {
	Name() string
	DirtyLen() int
	Counts() map[tracked.Change]int
	Epoch() tracked.Epoch
}

// Collector is a prometheus.Collector reporting the state of registered
// sources. It also implements tracked.OperationLogger so it can time
// maintain, reset, clean and publish calls.
type Collector struct {
	mu      sync.RWMutex
	sources map[string]Source

	dirtyDesc  *prometheus.Desc
	eventsDesc *prometheus.Desc
	epochDesc  *prometheus.Desc

	operationDuration *prometheus.HistogramVec
	operationChanged  *prometheus.CounterVec
	operationErrors   *prometheus.CounterVec
}

// NewCollector returns a Collector with no sources.
func NewCollector() *Collector {
	return &Collector{
		sources: make(map[string]Source),
		dirtyDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "dirty_slots"),
			"The number of slots inserted or modified in the open epoch.",
			[]string{"tracker"}, nil,
		),
		eventsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "events"),
			"The number of slots holding each change in the open epoch.",
			[]string{"tracker", "change"}, nil,
		),
		epochDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "epoch"),
			"The sequence number of the open epoch.",
			[]string{"tracker"}, nil,
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "The time taken by tracker operations.",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			}, []string{"tracker", "op"},
		),
		operationChanged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operation_changed_slots_total",
				Help:      "The number of slots changed by tracker operations.",
			}, []string{"tracker", "op"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operation_errors_total",
				Help:      "The number of tracker operations that returned an error.",
			}, []string{"tracker", "op"},
		),
	}
}

// Add registers src. Names must be unique within a collector.
func (c *Collector) Add(src Source) error {
	if src == nil {
		return fmt.Errorf("metrics: nil source")
	}
	name := src.Name()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.sources[name]; exists {
		return fmt.Errorf("metrics: source %q already added", name)
	}
	c.sources[name] = src
	return nil
}

// Remove unregisters the source called name.
func (c *Collector) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, name)
}

// LogOperation implements tracked.OperationLogger.
func (c *Collector) LogOperation(event tracked.OperationLogEvent) {
	c.operationDuration.WithLabelValues(event.Tracker, event.Op).Observe(event.Duration.Seconds())
	if event.Changed > 0 {
		c.operationChanged.WithLabelValues(event.Tracker, event.Op).Add(float64(event.Changed))
	}
	if event.Err != nil {
		c.operationErrors.WithLabelValues(event.Tracker, event.Op).Inc()
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.dirtyDesc
	ch <- c.eventsDesc
	ch <- c.epochDesc
	c.operationDuration.Describe(ch)
	c.operationChanged.Describe(ch)
	c.operationErrors.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	sources := make([]Source, 0, len(c.sources))
	for _, src := range c.sources {
		sources = append(sources, src)
	}
	c.mu.RUnlock()

	for _, src := range sources {
		name := src.Name()
		ch <- prometheus.MustNewConstMetric(c.dirtyDesc, prometheus.GaugeValue, float64(src.DirtyLen()), name)
		counts := src.Counts()
		for _, change := range []tracked.Change{tracked.ChangeInserted, tracked.ChangeModified, tracked.ChangeRemoved} {
			ch <- prometheus.MustNewConstMetric(c.eventsDesc, prometheus.GaugeValue, float64(counts[change]), name, change.String())
		}
		ch <- prometheus.MustNewConstMetric(c.epochDesc, prometheus.GaugeValue, float64(src.Epoch().Seq), name)
	}
	c.operationDuration.Collect(ch)
	c.operationChanged.Collect(ch)
	c.operationErrors.Collect(ch)
}
