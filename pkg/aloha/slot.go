package aloha

// Slot holds the replicas deposited into one (carrier_id, slot_id)
// coordinate before collision resolution runs (§3).
type Slot struct {
	CarrierID uint16
	SlotID    int
	Replicas  []DataPacket
}

// Clear empties the slot's replica list, ready for the next superframe
// (§3: "Slot contents are cleared at the end of every SA schedule
// tick").
func (s *Slot) Clear() {
	s.Replicas = s.Replicas[:0]
}

// SlotMap is the per-category mapping of slot id to its Slot, the input
// C5 (pkg/aloha/resolver) consumes and C7 (pkg/aloha/controller)
// populates on receive.
type SlotMap map[int]*Slot

// Deposit appends packet to the slot identified by slotID, creating the
// slot if necessary.
func (m SlotMap) Deposit(carrierID uint16, slotID int, packet DataPacket) {
	s, ok := m[slotID]
	if !ok {
		s = &Slot{CarrierID: carrierID, SlotID: slotID}
		m[slotID] = s
	}
	s.Replicas = append(s.Replicas, packet)
}

// ClearAll empties every slot's replica list without discarding the
// slot objects themselves, recycling them across superframes.
func (m SlotMap) ClearAll() {
	for _, s := range m {
		s.Clear()
	}
}
