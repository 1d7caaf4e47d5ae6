// Package metrics exposes the server's Prometheus instrumentation:
// connected-participant count, per-discriminant request volume, and
// broadcast fan-out size.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedParticipants = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wireline_connected_participants",
		Help: "Number of participants currently online (not OFFLINE)",
	})

	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wireline_requests_total",
		Help: "Total client requests processed, by discriminant name",
	}, []string{"kind"})

	FrameDecodeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wireline_frame_decode_errors_total",
		Help: "Total inbound frames dropped for failing to decode, by reason",
	}, []string{"reason"})

	BroadcastFanout = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wireline_broadcast_fanout",
		Help:    "Number of participants a single broadcast frame was delivered to",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})

	IdleDemotionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wireline_idle_demotions_total",
		Help: "Total AVAILABLE -> AWAY transitions made by the activity monitor",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectedParticipants,
		RequestsTotal,
		FrameDecodeErrorsTotal,
		BroadcastFanout,
		IdleDemotionsTotal,
	)
}
