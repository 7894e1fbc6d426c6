package catalog

// Category groups a set of CarrierGroups under one scheduling policy.
// IsSlottedAloha marks categories whose carriers are scheduled by the
// random-access MAC rather than by demand assignment; only these
// categories participate in SA bookkeeping (§4.2: "a terminal assigned
// to a non-SA category is accepted without effect"). ComputeSlots
// assigns slot ranges to every category's carriers, SA or not.
type Category struct {
	Name           string
	IsSlottedAloha bool
	Carriers       []*CarrierGroup

	slotRanges map[uint16]SlotRange
	totalSlots int
}

// NewCategory creates a named Category over the given carriers.
func NewCategory(name string, isSlottedAloha bool, carriers []*CarrierGroup) *Category {
	return &Category{Name: name, IsSlottedAloha: isSlottedAloha, Carriers: carriers}
}

// ComputeSlots assigns each carrier a contiguous global slot range sized
// by converter.SlotsPerFrame applied to the carrier's symbol rate and
// its first MODCOD's efficiency (§4.2). Carriers with an empty MODCOD
// list are skipped entirely, consistent with the original
// implementation only building an FMT-keyed slot table for carriers
// that advertise at least one MODCOD.
func (c *Category) ComputeSlots(converter Converter) {
	c.slotRanges = make(map[uint16]SlotRange, len(c.Carriers))
	base := 0
	for _, carrier := range c.Carriers {
		if len(carrier.Modcods) == 0 {
			continue
		}
		count := converter.SlotsPerFrame(carrier.SymbolRate, carrier.Modcods[0].Efficiency)
		c.slotRanges[carrier.ID] = SlotRange{Base: base, Count: count}
		base += count
	}
	c.totalSlots = base
}

// SlotRange returns the slot range assigned to carrierID, and whether
// ComputeSlots assigned one.
func (c *Category) SlotRange(carrierID uint16) (SlotRange, bool) {
	r, ok := c.slotRanges[carrierID]
	return r, ok
}

// TotalSlots is the sum of every carrier's slot count after ComputeSlots
// has run.
func (c *Category) TotalSlots() int {
	return c.totalSlots
}

// CarrierForSlot returns the id of the carrier that owns global slot
// id, and whether any carrier claims it.
func (c *Category) CarrierForSlot(slotID int) (uint16, bool) {
	for carrierID, r := range c.slotRanges {
		if slotID >= r.Base && slotID < r.Base+r.Count {
			return carrierID, true
		}
	}
	return 0, false
}
