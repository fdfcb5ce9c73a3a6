package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reasons a frame is dropped before detection.
const (
	DropIdle       = "idle"       // arrived while the session was not streaming
	DropSuperseded = "superseded" // replaced in the pending slot by a newer frame
	DropMalformed  = "malformed"  // payload could not be decoded
)

// Metrics holds the relay's Prometheus collectors on a private registry.
type Metrics struct {
	FramesReceived   prometheus.Counter
	FramesProcessed  prometheus.Counter
	FramesDropped    *prometheus.CounterVec
	ResultsDiscarded prometheus.Counter
	Detections       *prometheus.CounterVec
	DetectLatency    prometheus.Histogram
	Streaming        prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_frames_received_total",
			Help: "Webcam frames received from producers",
		}),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_frames_processed_total",
			Help: "Frames run through detection and broadcast",
		}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_frames_dropped_total",
			Help: "Frames dropped before detection",
		}, []string{"reason"}),
		ResultsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_results_discarded_total",
			Help: "Detection results that completed after the stream was stopped",
		}),
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_detections_total",
			Help: "Detections broadcast, by label",
		}, []string{"label"}),
		DetectLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_detect_duration_seconds",
			Help:    "Wall-clock time of one detection call",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Streaming: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_streaming",
			Help: "1 while the session accepts frames",
		}),
	}

	m.registry.MustRegister(
		m.FramesReceived,
		m.FramesProcessed,
		m.FramesDropped,
		m.ResultsDiscarded,
		m.Detections,
		m.DetectLatency,
		m.Streaming,
	)

	return m
}

// TrackClients exposes the connected consumer count through fn.
func (m *Metrics) TrackClients(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "relay_connected_clients",
			Help: "Connected socket clients",
		},
		func() float64 { return float64(fn()) },
	))
}

// ObserveDetect records one detection call.
func (m *Metrics) ObserveDetect(elapsed time.Duration, labels []string) {
	m.DetectLatency.Observe(elapsed.Seconds())
	for _, l := range labels {
		m.Detections.WithLabelValues(l).Inc()
	}
}

// Drop counts a dropped frame.
func (m *Metrics) Drop(reason string) {
	m.FramesDropped.WithLabelValues(reason).Inc()
}

// SetStreaming mirrors the session flag.
func (m *Metrics) SetStreaming(on bool) {
	if on {
		m.Streaming.Set(1)
	} else {
		m.Streaming.Set(0)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
