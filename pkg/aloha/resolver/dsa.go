package resolver

import (
	"sort"

	"github.com/satcom-sim/encap/pkg/aloha"
)

// dsaResolver implements SlottedAlohaAlgoDsa (§4.5): a slot with exactly
// one replica is accepted (unless its unique-id was already accepted
// for that terminal); a slot with more than one replica is entirely a
// collision. Every slot is cleared regardless of outcome.
type dsaResolver struct{}

func (r *dsaResolver) RemoveCollisions(slots aloha.SlotMap, accepted *[]aloha.DataPacket) int {
	ids := sortedSlotIDs(slots)
	accIDs := make(acceptedIDs)
	collisions := 0

	for _, slotID := range ids {
		slot := slots[slotID]
		switch len(slot.Replicas) {
		case 0:
			// nothing deposited this tick
		case 1:
			p := slot.Replicas[0]
			if !accIDs.alreadyAccepted(p.SrcTalID, p.ID()) {
				accIDs.record(p.SrcTalID, p.ID())
				*accepted = append(*accepted, p)
			}
		default:
			collisions += len(slot.Replicas)
		}
		slot.Clear()
	}
	return collisions
}

// sortedSlotIDs returns slots' keys in ascending order, giving the
// resolver a deterministic natural-order traversal (map iteration order
// is not guaranteed in Go).
func sortedSlotIDs(slots aloha.SlotMap) []int {
	ids := make([]int, 0, len(slots))
	for id := range slots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
