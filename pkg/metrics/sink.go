// Package metrics implements an events.Sink backed by Prometheus
// counters and gauges, served over HTTP via gorilla/mux. Its
// registration pattern follows the exporter package from the sockstats
// reference repo (pkg/exporter/exporter.go), generalized from a
// TCP_INFO connection collector to TUIO broadcast event counters.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink is an events.Sink that records every event as a Prometheus
// metric.
type Sink struct {
	clientsConnected   prometheus.Counter
	clientsDisconnected prometheus.Counter
	clientsActive      prometheus.Gauge
	framesEncoded      prometheus.Counter
	objectsPerFrame    prometheus.Gauge
	frameBytes         prometheus.Histogram
	serverRunning      prometheus.Gauge
}

// NewSink creates and registers the simulator's metrics against reg.
func NewSink(reg prometheus.Registerer) *Sink {
	s := &Sink{
		clientsConnected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuio_simulator",
			Name:      "clients_connected_total",
			Help:      "Total WebSocket clients that have connected.",
		}),
		clientsDisconnected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuio_simulator",
			Name:      "clients_disconnected_total",
			Help:      "Total WebSocket clients that have disconnected.",
		}),
		clientsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tuio_simulator",
			Name:      "clients_active",
			Help:      "Currently connected WebSocket clients.",
		}),
		framesEncoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuio_simulator",
			Name:      "frames_encoded_total",
			Help:      "Total OSC bundles encoded and broadcast.",
		}),
		objectsPerFrame: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tuio_simulator",
			Name:      "objects_per_frame",
			Help:      "Object count carried by the most recently broadcast frame.",
		}),
		frameBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tuio_simulator",
			Name:      "frame_bytes",
			Help:      "Encoded OSC bundle size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(32, 2, 10),
		}),
		serverRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tuio_simulator",
			Name:      "server_running",
			Help:      "1 if the frame producer is running, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		s.clientsConnected,
		s.clientsDisconnected,
		s.clientsActive,
		s.framesEncoded,
		s.objectsPerFrame,
		s.frameBytes,
		s.serverRunning,
	)
	return s
}

func (s *Sink) ClientConnected(string) {
	s.clientsConnected.Inc()
	s.clientsActive.Inc()
}

func (s *Sink) ClientDisconnected(string) {
	s.clientsDisconnected.Inc()
	s.clientsActive.Dec()
}

func (s *Sink) OSCMessage(_ uint32, _ int64, objectCount, messageSize, connectedClients int) {
	s.framesEncoded.Inc()
	s.objectsPerFrame.Set(float64(objectCount))
	s.frameBytes.Observe(float64(messageSize))
	s.clientsActive.Set(float64(connectedClients))
}

func (s *Sink) ServerStatus(running bool, connectedClients int) {
	if running {
		s.serverRunning.Set(1)
	} else {
		s.serverRunning.Set(0)
	}
	s.clientsActive.Set(float64(connectedClients))
}

// NewHandler returns an HTTP handler serving /metrics for reg, routed
// through gorilla/mux to match the teacher's routing style.
func NewHandler(reg *prometheus.Registry) http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return router
}
