// Package metrics counts the work done while building maps:
// composite ring classifications and rendered outputs.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/sphere"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the Prometheus metrics of a map build.
// It implements geotag.Observer; a nil *Collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Rings                 *prometheus.CounterVec
	RejectedRings         *prometheus.CounterVec
	AmbiguousOrientations prometheus.Counter
	Outputs               *prometheus.CounterVec
	RenderDurations       *prometheus.HistogramVec
}

var _ geotag.Observer = (*Collector)(nil)

// NewCollector registers the metrics against `reg`, defaulting
// to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	rings, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomap_rings_total",
		Help: "Composite rings classified, labeled by role (shell or hole).",
	}, []string{"role"}), "geomap_rings_total")
	if err != nil {
		return nil, err
	}
	rejected, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomap_rejected_rings_total",
		Help: "Composite rings rejected, labeled by reason.",
	}, []string{"reason"}), "geomap_rejected_rings_total")
	if err != nil {
		return nil, err
	}
	ambiguous, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomap_ambiguous_orientations_total",
		Help: "Composite rings whose orientation could not be decided.",
	}), "geomap_ambiguous_orientations_total")
	if err != nil {
		return nil, err
	}
	outputs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomap_outputs_total",
		Help: "Files written, labeled by format.",
	}, []string{"format"}), "geomap_outputs_total")
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geomap_render_duration_seconds",
		Help:    "Time spent producing an output, in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"format"}), "geomap_render_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:              gatherer,
		Rings:                 rings,
		RejectedRings:         rejected,
		AmbiguousOrientations: ambiguous,
		Outputs:               outputs,
		RenderDurations:       durations,
	}, nil
}

// register returns the already registered collector when an
// identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}

func (c *Collector) RingClassified(hole bool) {
	if c == nil {
		return
	}
	role := "shell"
	if hole {
		role = "hole"
	}
	c.Rings.WithLabelValues(role).Inc()
}

// RingRejected labels `err` as "empty", "degenerate" or "other".
func (c *Collector) RingRejected(err error) {
	if c == nil {
		return
	}
	reason := "other"
	switch {
	case errors.Is(err, sphere.ErrInvalidRing):
		reason = "empty"
	case errors.Is(err, sphere.ErrDegenerateGeometry):
		reason = "degenerate"
	}
	c.RejectedRings.WithLabelValues(reason).Inc()
}

func (c *Collector) OrientationAmbiguous() {
	if c == nil {
		return
	}
	c.AmbiguousOrientations.Inc()
}

// OutputWritten records a file of the given format, produced
// since `start`.
func (c *Collector) OutputWritten(format string, start time.Time) {
	if c == nil {
		return
	}
	c.Outputs.WithLabelValues(format).Inc()
	c.RenderDurations.WithLabelValues(format).Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps the gathered metrics in the text format
// read by the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.gatherer)
}
