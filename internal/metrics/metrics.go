// Package metrics provides Prometheus metrics for schematic processing
package metrics

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Error kinds used as the "type" label
const (
	ErrorSyntax  = "syntax"
	ErrorFormat  = "format"
	ErrorNesting = "nesting"
	ErrorIO      = "io"
	ErrorOther   = "other"
)

// Metrics holds the collectors for one registry
type Metrics struct {
	DocumentsTotal  *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	InputBytes      prometheus.Counter
	Components      prometheus.Histogram
	Nets            prometheus.Histogram
	DroppedSymbols  prometheus.Counter
	NameCollisions  prometheus.Counter
	DanglingNets    prometheus.Counter
	SnapshotsStored *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schnet_documents_total",
				Help: "Total number of schematic documents processed",
			},
			[]string{"status"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schnet_errors_total",
				Help: "Total number of processing failures by kind",
			},
			[]string{"type"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schnet_stage_duration_seconds",
				Help:    "Time spent in each processing stage",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),
		InputBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "schnet_input_bytes_total",
			Help: "Total bytes of schematic source read",
		}),
		Components: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "schnet_components_per_document",
			Help:    "Components per processed document",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Nets: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "schnet_nets_per_document",
			Help:    "Nets per processed document",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		DroppedSymbols: factory.NewCounter(prometheus.CounterOpts{
			Name: "schnet_dropped_symbols_total",
			Help: "Symbols discarded for lacking a Reference",
		}),
		NameCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "schnet_net_name_collisions_total",
			Help: "Nets sharing a name with an earlier net",
		}),
		DanglingNets: factory.NewCounter(prometheus.CounterOpts{
			Name: "schnet_dangling_nets_total",
			Help: "Nets with no attached pin",
		}),
		SnapshotsStored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schnet_snapshots_total",
				Help: "Snapshot writes by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveStage records the duration of one stage
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordSuccess records a processed document
func (m *Metrics) RecordSuccess(components, nets, dangling, collisions, dropped int) {
	m.DocumentsTotal.WithLabelValues("ok").Inc()
	m.Components.Observe(float64(components))
	m.Nets.Observe(float64(nets))
	m.DanglingNets.Add(float64(dangling))
	m.NameCollisions.Add(float64(collisions))
	m.DroppedSymbols.Add(float64(dropped))
}

// RecordError records a failed document
func (m *Metrics) RecordError(kind string) {
	m.DocumentsTotal.WithLabelValues("error").Inc()
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordSnapshot records a snapshot write; created is false for duplicates
func (m *Metrics) RecordSnapshot(created bool) {
	outcome := "duplicate"
	if created {
		outcome = "created"
	}
	m.SnapshotsStored.WithLabelValues(outcome).Inc()
}

// WriteText writes every metric family in g in the text exposition format
func WriteText(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// WriteFile dumps g to path in the text exposition format
func WriteFile(g prometheus.Gatherer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := WriteText(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
