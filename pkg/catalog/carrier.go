package catalog

import "time"

// CarrierGroup is one physical-layer carrier belonging to a Category: a
// symbol rate and the list of MODCODs it may use. Slot computation uses
// only the first MODCOD in the list, matching the original
// implementation's single representative-FMT approximation.
type CarrierGroup struct {
	ID         uint16
	SymbolRate float64 // symbols per second
	Modcods    []Modcod
}

// SlotRange is a contiguous, half-open range of global slot ids
// [Base, Base+Count) assigned to one carrier within a category.
type SlotRange struct {
	Base  int
	Count int
}

// Converter turns a carrier's symbol rate and representative MODCOD
// efficiency into a per-frame slot count (§4.2's computeSlots),
// generalizing the original implementation's
// UnitConverterFixedSymbolLength, which derives a packet-per-frame count
// from a fixed Slotted ALOHA burst length expressed in symbols.
type Converter struct {
	// FrameDuration is the superframe duration computeSlots amortizes
	// the symbol rate over.
	FrameDuration time.Duration
	// SlotSymbolBudget is the physical-layer bit length of one Slotted
	// ALOHA burst before channel coding; dividing by a MODCOD's
	// efficiency converts it to the number of symbols one slot
	// consumes.
	SlotSymbolBudget float64
}

// SlotsPerFrame computes how many slots fit in one frame at the given
// symbol rate for a MODCOD of the given efficiency: the number of
// symbols the carrier emits per frame, divided by the number of symbols
// one slot consumes at this efficiency, rounded down (a partial slot
// cannot be scheduled into).
func (c Converter) SlotsPerFrame(symbolRate, efficiency float64) int {
	if c.SlotSymbolBudget <= 0 || efficiency <= 0 {
		return 0
	}
	symbolsPerSlot := c.SlotSymbolBudget / efficiency
	symbolsPerFrame := symbolRate * c.FrameDuration.Seconds()
	if symbolsPerSlot <= 0 {
		return 0
	}
	return int(symbolsPerFrame / symbolsPerSlot)
}
