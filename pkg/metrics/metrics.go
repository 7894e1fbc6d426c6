// Package metrics publishes the per-category Slotted ALOHA collision
// and GSE throughput counters as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every metric the controller and GSE codec publish.
// One Collector is shared across every category/context; category and
// context are carried as label values rather than separate collectors.
type Collector struct {
	CollisionsBefore *prometheus.GaugeVec
	Collisions       *prometheus.GaugeVec
	CollisionsRatio  *prometheus.GaugeVec
	ReceivedPackets  *prometheus.CounterVec

	GsePacketsEncoded *prometheus.CounterVec
	GseBytesEncoded   *prometheus.CounterVec
	GsePacketsDropped *prometheus.CounterVec
}

// New registers every metric against reg. Passing prometheus.NewRegistry()
// keeps tests hermetic; cmd/encapsim also passes its own registry rather
// than the default registerer.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		CollisionsBefore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aloha_collisions_before_algo",
			Help: "Replicas found in multi-occupancy slots before collision resolution ran, per category.",
		}, []string{"category"}),
		Collisions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aloha_collisions",
			Help: "Replicas that remained in collision after resolution, per category.",
		}, []string{"category"}),
		CollisionsRatio: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aloha_collisions_ratio_percent",
			Help: "Collisions as a percentage of total slots, per category.",
		}, []string{"category"}),
		ReceivedPackets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aloha_received_packets_total",
			Help: "Data packet replicas deposited into slots, per category.",
		}, []string{"category"}),
		GsePacketsEncoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gse_packets_encoded_total",
			Help: "GSE packets produced, per packing context.",
		}, []string{"context"}),
		GseBytesEncoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gse_bytes_encoded_total",
			Help: "GSE bytes produced (whole packets, headers included), per packing context.",
		}, []string{"context"}),
		GsePacketsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gse_packets_dropped_total",
			Help: "Packets rejected by the decoder, by fault kind.",
		}, []string{"reason"}),
	}
}
