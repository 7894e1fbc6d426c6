// Package controller implements SaController (C7): the random-access
// scheduling engine tying together the terminal catalog, the collision
// resolver and the per-terminal reassemblers. It drives two distinct
// paths per superframe: Deposit on receive, and Schedule on the SA
// frame tick (§4.7).
package controller

import (
	"log/slog"

	"github.com/rs/xid"

	"github.com/satcom-sim/encap/pkg/aloha"
	"github.com/satcom-sim/encap/pkg/aloha/reassembly"
	"github.com/satcom-sim/encap/pkg/aloha/resolver"
	"github.com/satcom-sim/encap/pkg/catalog"
	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/satcom-sim/encap/pkg/metrics"
	"github.com/satcom-sim/encap/pkg/packet"
)

// categoryState is the per-category bookkeeping the controller keeps
// between schedule ticks.
type categoryState struct {
	slots         aloha.SlotMap
	resolver      resolver.Resolver
	receivedCount int
}

// Controller drives Slotted ALOHA reception and scheduling for one
// spot. It is not safe for concurrent use (§5): Deposit and Schedule
// both run on the single superframe-processing goroutine.
type Controller struct {
	spotID   uint16
	catalog  *catalog.Catalog
	metrics  *metrics.Collector
	log      *slog.Logger
	cats     map[string]*categoryState
	reassemb map[uint8]*reassembly.Reassembler
}

// New builds a Controller for spotID. algorithmFor selects DSA or
// CRDSA per Slotted-ALOHA category name; categories not present in it
// default to DSA.
func New(spotID uint16, cat *catalog.Catalog, algorithmFor map[string]resolver.Algorithm, m *metrics.Collector, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		spotID:   spotID,
		catalog:  cat,
		metrics:  m,
		log:      logger.With("component", "saloha-controller", "spot_id", spotID),
		cats:     make(map[string]*categoryState),
		reassemb: make(map[uint8]*reassembly.Reassembler),
	}
	for name, algo := range algorithmFor {
		c.cats[name] = &categoryState{slots: make(aloha.SlotMap), resolver: resolver.New(algo)}
	}
	return c
}

func (c *Controller) stateFor(name string) *categoryState {
	s, ok := c.cats[name]
	if !ok {
		s = &categoryState{slots: make(aloha.SlotMap), resolver: resolver.New(resolver.DSA)}
		c.cats[name] = s
	}
	return s
}

// Deposit pushes one received replica into its category's slot map,
// recovering the owning category from the catalog by the packet's
// SrcTalID (§4.7's receive-path slot deposit). Packets from unknown
// terminals or naming a slot id outside the category's assigned range
// are dropped, logged, and reported to the caller through the returned
// error.
func (c *Controller) Deposit(pkt aloha.DataPacket) error {
	term, ok := c.catalog.Terminal(pkt.SrcTalID)
	if !ok {
		c.log.Error("slotted ALOHA packet from unknown terminal", "src_tal_id", pkt.SrcTalID)
		return encapfault.ErrUnknownTerminal
	}

	cat, ok := c.catalog.Category(term.Category)
	if !ok || !cat.IsSlottedAloha {
		c.log.Error("terminal's category is not a slotted ALOHA category", "src_tal_id", pkt.SrcTalID, "category", term.Category)
		return encapfault.ErrUnknownTerminal
	}

	carrierID, ok := cat.CarrierForSlot(int(pkt.TS))
	if !ok {
		c.log.Error("packet received on a slot that does not exist", "src_tal_id", pkt.SrcTalID, "slot", pkt.TS)
		return encapfault.ErrNoSlotForID
	}

	st := c.stateFor(term.Category)
	st.slots.Deposit(carrierID, int(pkt.TS), pkt)
	st.receivedCount++
	if c.metrics != nil {
		c.metrics.ReceivedPackets.WithLabelValues(term.Category).Inc()
	}
	return nil
}

// DepositSimulated pushes one synthetic traffic replica directly into
// category's slot map, bypassing the terminal catalog lookup Deposit
// performs: simulated load is injected by the scheduler itself, not
// received over the air, so it never has a real registered terminal
// behind it (§4.7's simulated-traffic generator).
func (c *Controller) DepositSimulated(category string, carrierID uint16, ts uint16, pkt aloha.DataPacket) {
	st := c.stateFor(category)
	pkt.TS = ts
	st.slots.Deposit(carrierID, int(ts), pkt)
	st.receivedCount++
}

// ScheduleResult is everything one category's schedule tick produced.
type ScheduleResult struct {
	Category     string
	Propagated   []*packet.Packet // inner packets stripped of their SA header, ready for the upper burst
	Acks         []aloha.ControlPacket
	CollisionIDs xid.ID // correlation id for this tick's ACK batch, for logging
}

// Schedule runs one SA frame tick for every configured category:
// collision resolution, ACK generation (filtering out synthetic
// traffic ids above BroadcastTalID per §4.7), and handoff of completed
// PDUs to reassembly. Categories with nothing received are skipped,
// mirroring the original "no traffic, nothing to schedule" short
// circuit.
func (c *Controller) Schedule() []ScheduleResult {
	var results []ScheduleResult
	for name, st := range c.cats {
		if st.receivedCount == 0 {
			c.publishZero(name)
			continue
		}
		results = append(results, c.scheduleCategory(name, st))
	}
	return results
}

func (c *Controller) publishZero(category string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CollisionsBefore.WithLabelValues(category).Set(0)
	c.metrics.Collisions.WithLabelValues(category).Set(0)
	c.metrics.CollisionsRatio.WithLabelValues(category).Set(0)
}

func (c *Controller) scheduleCategory(name string, st *categoryState) ScheduleResult {
	cat, _ := c.catalog.Category(name)
	tick := xid.New()

	before := collisionsBeforeResolution(st.slots)

	var accepted []aloha.DataPacket
	collisions := st.resolver.RemoveCollisions(st.slots, &accepted)

	slotsPerCarrier := 0
	if len(cat.Carriers) > 0 {
		slotsPerCarrier = cat.TotalSlots() / len(cat.Carriers)
	}
	resolver.SortByCarrierInterleave(accepted, slotsPerCarrier)

	if c.metrics != nil {
		c.metrics.CollisionsBefore.WithLabelValues(name).Set(float64(before))
		c.metrics.Collisions.WithLabelValues(name).Set(float64(collisions))
		total := cat.TotalSlots()
		ratio := 0.0
		if total > 0 {
			ratio = float64(collisions) * 100 / float64(total)
		}
		c.metrics.CollisionsRatio.WithLabelValues(name).Set(ratio)
	}

	result := ScheduleResult{Category: name, CollisionIDs: tick}
	for _, pkt := range accepted {
		if pkt.SrcTalID > aloha.BroadcastTalID {
			c.log.Debug("dropping simulated slotted ALOHA traffic before ACK", "src_tal_id", pkt.SrcTalID)
			continue
		}

		term, ok := c.catalog.Terminal(pkt.SrcTalID)
		if !ok || term.Category != name {
			c.log.Error("accepted packet from terminal outside expected category", "src_tal_id", pkt.SrcTalID, "category", name)
			continue
		}

		result.Acks = append(result.Acks, aloha.ControlPacket{
			Type:     aloha.ControlTypeACK,
			DstTalID: uint16(pkt.SrcTalID),
			Payload:  pkt.ID(),
		})

		re, ok := c.reassemb[pkt.SrcTalID]
		if !ok {
			re = reassembly.New(pkt.SrcTalID, c.log)
			c.reassemb[pkt.SrcTalID] = re
		}
		outcome, pdu := re.AddPacket(pkt)
		if outcome == reassembly.Propagate {
			result.Propagated = append(result.Propagated, stripSAHeader(pdu))
		}
	}

	st.slots.ClearAll()
	st.receivedCount = 0
	return result
}

// stripSAHeader implements §4.7's "strip the SA header from each member
// and emit inner packets to the upper burst": each member of pdu
// contributes only its Payload (the SA data-packet header of ts/seq/
// pdu_nb/replicas is carried in the struct fields, never in Payload
// itself), concatenated in the already seq-sorted order C6 produced.
// The result is handed onward as a GSE wire packet, matching the
// receive path's "... → C6 reassembles PDUs → C4 de-encapsulates GSE →
// upper burst" (§2).
func stripSAHeader(pdu []aloha.DataPacket) *packet.Packet {
	total := 0
	for _, member := range pdu {
		total += len(member.Payload)
	}
	data := make([]byte, 0, total)
	for _, member := range pdu {
		data = append(data, member.Payload...)
	}
	first := pdu[0]
	return packet.BuildWithHeader(data, packet.ProtocolGSE, first.QoS, first.SrcTalID, packet.BroadcastTalID, 0, 0)
}

// collisionsBeforeResolution counts every replica sitting in a
// multi-occupancy slot prior to running the resolver, matching the
// original pre-algorithm collision probe.
func collisionsBeforeResolution(slots aloha.SlotMap) int {
	n := 0
	for _, slot := range slots {
		if len(slot.Replicas) > 1 {
			n += len(slot.Replicas)
		}
	}
	return n
}
