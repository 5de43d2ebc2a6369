// Package metrics exposes Prometheus collectors for the fiber engine and
// the session server.
//
// A nil *Collector is valid and records nothing, so the engine can call it
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "didact").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: exponential from 50µs.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "didact",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the engine and server metrics.
type Collector struct {
	passesTotal     *prometheus.CounterVec
	supersededTotal prometheus.Counter
	unitsTotal      prometheus.Counter
	slicesTotal     prometheus.Counter
	commitsTotal    prometheus.Counter
	effectsTotal    *prometheus.CounterVec
	commitDuration  prometheus.Histogram

	activeSessions prometheus.Gauge
	framesSent     prometheus.Counter
	frameBytes     prometheus.Counter
	eventsTotal    *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_passes_total",
			Help:        "Total number of render passes started, by trigger",
			ConstLabels: config.ConstLabels,
		}, []string{"trigger"}),

		supersededTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_passes_superseded_total",
			Help:        "Total number of render passes discarded before commit",
			ConstLabels: config.ConstLabels,
		}),

		unitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "units_of_work_total",
			Help:        "Total number of fibers processed",
			ConstLabels: config.ConstLabels,
		}),

		slicesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "idle_slices_total",
			Help:        "Total number of idle slices used by the work loop",
			ConstLabels: config.ConstLabels,
		}),

		commitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of commits applied to the host tree",
			ConstLabels: config.ConstLabels,
		}),

		effectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of committed effects, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"effect"}),

		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutation_frames_sent_total",
			Help:        "Total number of mutation frames sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		frameBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutation_frame_bytes_total",
			Help:        "Total bytes of mutation frames sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events, by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

// PassStarted records a new render pass.
func (c *Collector) PassStarted(trigger string) {
	if c == nil {
		return
	}
	c.passesTotal.WithLabelValues(trigger).Inc()
}

// PassSuperseded records a pass discarded before commit.
func (c *Collector) PassSuperseded() {
	if c == nil {
		return
	}
	c.supersededTotal.Inc()
}

// Unit records one processed fiber.
func (c *Collector) Unit() {
	if c == nil {
		return
	}
	c.unitsTotal.Inc()
}

// Slice records one work loop slice.
func (c *Collector) Slice() {
	if c == nil {
		return
	}
	c.slicesTotal.Inc()
}

// Commit records a finished commit.
func (c *Collector) Commit(placements, updates, deletions int, d time.Duration) {
	if c == nil {
		return
	}
	c.commitsTotal.Inc()
	c.effectsTotal.WithLabelValues("placement").Add(float64(placements))
	c.effectsTotal.WithLabelValues("update").Add(float64(updates))
	c.effectsTotal.WithLabelValues("deletion").Add(float64(deletions))
	c.commitDuration.Observe(d.Seconds())
}

// SessionOpened increments the active session gauge.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.activeSessions.Dec()
}

// FrameSent records a mutation frame written to a client.
func (c *Collector) FrameSent(bytes int) {
	if c == nil {
		return
	}
	c.framesSent.Inc()
	c.frameBytes.Add(float64(bytes))
}

// Event records a client event with status "ok" or "error".
func (c *Collector) Event(status string) {
	if c == nil {
		return
	}
	c.eventsTotal.WithLabelValues(status).Inc()
}
