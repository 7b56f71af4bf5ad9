package renderer

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

const metricsNamespace = "raytracer"

// Metrics collects render counters in a private prometheus registry. It is
// safe for concurrent use and doubles as the integrator's termination
// recorder.
type Metrics struct {
	registry     *prometheus.Registry
	samples      prometheus.Counter
	pixels       prometheus.Counter
	tiles        prometheus.Counter
	terminations *prometheus.CounterVec
	bounces      prometheus.Histogram
	duration     prometheus.Histogram

	// cached children of terminations
	byReason map[integrator.Termination]prometheus.Counter
}

// NewMetrics creates and registers the render metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_total",
			Help:      "Camera rays traced.",
		}),
		pixels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pixels_total",
			Help:      "Pixels rendered, counted once per pass.",
		}),
		tiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tiles_total",
			Help:      "Tiles rendered.",
		}),
		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "path_terminations_total",
			Help:      "Paths ended, by reason.",
		}, []string{"reason"}),
		bounces: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "path_bounces",
			Help:      "Scatter events per path.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Wall-clock time of complete renders.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}),
		byReason: map[integrator.Termination]prometheus.Counter{},
	}

	m.registry.MustRegister(m.samples, m.pixels, m.tiles, m.terminations, m.bounces, m.duration)
	for _, reason := range []integrator.Termination{
		integrator.TerminationSky,
		integrator.TerminationAbsorbed,
		integrator.TerminationDepth,
	} {
		m.byReason[reason] = m.terminations.WithLabelValues(reason.String())
	}
	return m
}

// Registry exposes the registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTermination implements integrator.TerminationRecorder
func (m *Metrics) RecordTermination(reason integrator.Termination, bounces int) {
	counter, ok := m.byReason[reason]
	if !ok {
		counter = m.terminations.WithLabelValues(reason.String())
	}
	counter.Inc()
	m.bounces.Observe(float64(bounces))
}

// ObserveTile records a completed tile
func (m *Metrics) ObserveTile(stats RenderStats) {
	m.tiles.Add(float64(stats.Tiles))
	m.pixels.Add(float64(stats.TotalPixels))
	m.samples.Add(float64(stats.TotalSamples))
}

// ObserveRender records a complete render
func (m *Metrics) ObserveRender(stats RenderStats) {
	m.duration.Observe(stats.Duration.Seconds())
}

// WriteTextfile writes the metrics in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
