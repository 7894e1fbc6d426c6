package main

import (
	"log/slog"
	"time"

	"github.com/satcom-sim/encap/pkg/aloha"
	"github.com/satcom-sim/encap/pkg/aloha/controller"
	"github.com/satcom-sim/encap/pkg/carrier"
	"github.com/satcom-sim/encap/pkg/catalog"
	"github.com/satcom-sim/encap/pkg/gse/encoder"
	"github.com/satcom-sim/encap/pkg/metrics"
	"github.com/satcom-sim/encap/pkg/packet"
	"github.com/satcom-sim/encap/pkg/runtime"
)

// simulator drives this process's synthetic traffic sources: upper-layer
// packets for the GSE encoder and simulated Slotted ALOHA load for the
// controller's schedule tick, generalizing the original implementation's
// simulateTraffic generator so the tool is runnable without a live feed.
type simulator struct {
	cl        *catalog.Catalog
	nodeTalID uint8
	sims      []runtime.SimulationConfig
	pduID     map[string]uint32
	nextSlot  map[string]int
}

func newSimulator(cl *catalog.Catalog, nodeTalID uint8, sims []runtime.SimulationConfig) *simulator {
	return &simulator{
		cl:        cl,
		nodeTalID: nodeTalID,
		sims:      sims,
		pduID:     make(map[string]uint32),
		nextSlot:  make(map[string]int),
	}
}

// injectSimulated pushes each configured simulation's share of synthetic
// replicas directly into its category's slots, ahead of collision
// resolution, the same way the original's simulateTraffic runs before
// schedule() resolves the tick.
func (s *simulator) injectSimulated(ctl *controller.Controller) {
	for _, sim := range s.sims {
		cat, ok := s.cl.Category(sim.Category)
		if !ok || !cat.IsSlottedAloha || len(cat.Carriers) == 0 {
			continue
		}
		carrierID := cat.Carriers[0].ID
		slotRange, ok := cat.SlotRange(carrierID)
		if !ok || slotRange.Count == 0 {
			continue
		}
		for i := 0; i < sim.MaxPackets; i++ {
			ts := slotRange.Base + s.nextSlot[sim.Category]%slotRange.Count
			s.nextSlot[sim.Category]++
			s.pduID[sim.Category]++
			pkt := aloha.DataPacket{
				PduID:      s.pduID[sim.Category],
				PduNb:      1,
				NbReplicas: uint16(sim.Replicas),
				SrcTalID:   aloha.BroadcastTalID + 1 + uint8(i%8),
			}
			ctl.DepositSimulated(sim.Category, carrierID, uint16(ts), pkt)
		}
	}
}

// generateUpperLayerTraffic builds one fixed-length MPEG2-TS cell bound
// for the broadcast destination and pushes it through the packing
// encoder, sending whatever GSE packets result (immediately, or after
// the packing threshold's deferred flush) over bus.
func (s *simulator) generateUpperLayerTraffic(enc *encoder.Encoder, bus carrier.Carrier, collector *metrics.Collector, logger *slog.Logger) {
	data := make([]byte, 188)
	data[0] = 0x47 // MPEG-TS sync byte
	p, err := packet.Build(data, 188, packet.ProtocolMPEG2TS, 0, s.nodeTalID, packet.BroadcastTalID)
	if err != nil {
		logger.Warn("failed to build synthetic upper-layer packet", "err", err)
		return
	}
	contextLabel := packet.ProtocolMPEG2TS.String()

	deferred, packets, err := enc.AddPacket(p)
	if err != nil {
		logger.Warn("failed to pack synthetic upper-layer packet", "err", err)
		return
	}
	if deferred != nil {
		time.AfterFunc(deferred.Delay, func() {
			flushed, err := enc.Flush(deferred.ContextID)
			if err != nil {
				logger.Warn("failed to flush packing context", "err", err)
				return
			}
			sendAll(bus, flushed, contextLabel, collector, logger)
		})
		return
	}
	sendAll(bus, packets, contextLabel, collector, logger)
}

func sendAll(bus carrier.Carrier, packets []*packet.Packet, contextLabel string, collector *metrics.Collector, logger *slog.Logger) {
	for _, gp := range packets {
		if err := bus.Send(gp.Data()); err != nil {
			logger.Warn("failed to send GSE packet", "err", err)
			continue
		}
		collector.GsePacketsEncoded.WithLabelValues(contextLabel).Inc()
		collector.GseBytesEncoded.WithLabelValues(contextLabel).Add(float64(gp.Len()))
	}
}
