// Package metrics exposes Prometheus instruments for pose tracking.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the Prometheus instruments of one process.
type Manager struct {
	// counters
	CounterFrames       *prometheus.CounterVec
	CounterSkippedTicks prometheus.Counter
	CounterReps         prometheus.Counter
	CounterSessions     prometheus.Counter
	CounterRequests     *prometheus.CounterVec

	// gauges
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistFrameDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("flexit", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("flexit", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames",
			Help:      "The total number of classified frames, by pose",
		}, []string{"pose"}),
		CounterSkippedTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rep_ticks_skipped",
			Help:      "The total number of frames the rep counter skipped for missing landmarks",
		}),
		CounterReps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reps",
			Help:      "The total number of completed repetitions",
		}),
		CounterSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions",
			Help:      "The total number of started tracking sessions",
		}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming API requests",
		}, []string{"method", "status"}),
		GaugeActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "The number of tracking sessions currently open",
		}),
		HistFrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frame_duration_seconds",
			Help:      "Time spent classifying and counting one frame",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
	}
}
