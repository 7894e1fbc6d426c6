package resolver

import "github.com/satcom-sim/encap/pkg/aloha"

// crdsaResolver implements SlottedAlohaAlgoCrdsa (§4.5): iterative
// signal suppression. Every pass prunes replicas already accepted for
// their terminal, then accepts any slot left with exactly one replica;
// passes repeat until one produces no new acceptance, at which point
// any slot still holding more than one replica is a collision.
type crdsaResolver struct{}

func (r *crdsaResolver) RemoveCollisions(slots aloha.SlotMap, accepted *[]aloha.DataPacket) int {
	accIDs := make(acceptedIDs)
	ids := sortedSlotIDs(slots)

	for {
		converged := true
		for _, slotID := range ids {
			slot := slots[slotID]
			if len(slot.Replicas) == 0 {
				continue
			}

			kept := slot.Replicas[:0]
			for _, p := range slot.Replicas {
				if accIDs.alreadyAccepted(p.SrcTalID, p.ID()) {
					continue // signal suppression: already decoded elsewhere
				}
				kept = append(kept, p)
			}
			slot.Replicas = kept

			if len(slot.Replicas) == 1 {
				p := slot.Replicas[0]
				accIDs.record(p.SrcTalID, p.ID())
				*accepted = append(*accepted, p)
				converged = false // another pass may now free up a collided slot
			}
		}
		if converged {
			break
		}
	}

	collisions := 0
	for _, slotID := range ids {
		slot := slots[slotID]
		if len(slot.Replicas) > 1 {
			collisions += len(slot.Replicas)
		}
		slot.Clear()
	}
	return collisions
}
