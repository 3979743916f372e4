/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus metrics for grammar induction. InductionMetrics records
engine events and grammar size on its own registry, which can be dumped to a
node exporter textfile once a run is over.
*/

package monitoring

import (
	"fmt"
	"sync"

	"github.com/kleascm/sequitur/pkg/inference"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sequitur"

// InductionSnapshot is a point-in-time copy of the recorded values
type InductionSnapshot struct {
	Events      map[inference.Event]int `json:"events"`
	Rules       int                     `json:"rules"`
	Symbols     int                     `json:"symbols"`
	Compression float64                 `json:"compression"`
}

// InductionMetrics implements inference.Recorder on a private registry.
type InductionMetrics struct {
	registry    *prometheus.Registry
	events      *prometheus.CounterVec
	rules       prometheus.Gauge
	symbols     prometheus.Gauge
	compression prometheus.Gauge

	mu       sync.Mutex
	snapshot InductionSnapshot
}

// NewInductionMetrics creates the collectors and registers them. constLabels
// are attached to every series (a run id, an input name).
func NewInductionMetrics(constLabels prometheus.Labels) (*InductionMetrics, error) {
	m := &InductionMetrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "events_total",
			Help:        "Engine events by kind",
			ConstLabels: constLabels,
		}, []string{"event"}),
		rules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "grammar",
			Name:        "rules",
			Help:        "Rules in the grammar, start rule included",
			ConstLabels: constLabels,
		}),
		symbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "grammar",
			Name:        "symbols",
			Help:        "Symbols across every right-hand side",
			ConstLabels: constLabels,
		}),
		compression: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "grammar",
			Name:        "compression_ratio",
			Help:        "Grammar symbols per input token",
			ConstLabels: constLabels,
		}),
		snapshot: InductionSnapshot{Events: make(map[inference.Event]int)},
	}

	for _, c := range []prometheus.Collector{m.events, m.rules, m.symbols, m.compression} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register induction metrics: %w", err)
		}
	}
	return m, nil
}

// Record counts one engine event
func (m *InductionMetrics) Record(ev inference.Event) {
	m.events.WithLabelValues(string(ev)).Inc()

	m.mu.Lock()
	m.snapshot.Events[ev]++
	m.mu.Unlock()
}

// ObserveGrammar updates the size gauges after a token.
func (m *InductionMetrics) ObserveGrammar(rules, symbols int) {
	m.rules.Set(float64(rules))
	m.symbols.Set(float64(symbols))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Rules = rules
	m.snapshot.Symbols = symbols
	if tokens := m.snapshot.Events[inference.EventToken]; tokens > 0 {
		m.snapshot.Compression = float64(symbols) / float64(tokens)
		m.compression.Set(m.snapshot.Compression)
	}
}

// Snapshot returns a copy of the recorded values
func (m *InductionMetrics) Snapshot() InductionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := m.snapshot
	cp.Events = make(map[inference.Event]int, len(m.snapshot.Events))
	for ev, n := range m.snapshot.Events {
		cp.Events[ev] = n
	}
	return cp
}

// Gatherer exposes the private registry, for an HTTP handler or a test.
func (m *InductionMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format to path,
// atomically, for the node exporter textfile collector.
func (m *InductionMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
