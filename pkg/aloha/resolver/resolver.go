// Package resolver implements SaCollisionResolver (C5): the DSA and
// CRDSA collision-resolution algorithms, each a variant of the same
// Resolver interface rather than a virtual-dispatch hierarchy (§9:
// "dynamic dispatch replaced with a tagged variant" — the algorithm is
// chosen once at category configuration time and never swaps at
// runtime).
package resolver

import "github.com/satcom-sim/encap/pkg/aloha"

// Resolver removes collisions from slots and appends every accepted
// replica to accepted, returning the number of packets that remained in
// collision (§4.5).
type Resolver interface {
	RemoveCollisions(slots aloha.SlotMap, accepted *[]aloha.DataPacket) int
}

// New builds the configured Resolver variant for a category: DSA or
// CRDSA (§9).
func New(algo Algorithm) Resolver {
	switch algo {
	case CRDSA:
		return &crdsaResolver{}
	default:
		return &dsaResolver{}
	}
}

// Algorithm selects which collision-resolution variant a category uses.
type Algorithm uint8

const (
	DSA Algorithm = iota
	CRDSA
)

// acceptedIDs tracks, per source terminal, the unique ids already
// accepted this resolution pass — the invariant from §4.5: "each
// unique-id is accepted at most once per terminal".
type acceptedIDs map[uint8]map[aloha.UniqueID]struct{}

func (a acceptedIDs) alreadyAccepted(srcTalID uint8, id aloha.UniqueID) bool {
	ids, ok := a[srcTalID]
	if !ok {
		return false
	}
	_, seen := ids[id]
	return seen
}

func (a acceptedIDs) record(srcTalID uint8, id aloha.UniqueID) {
	ids, ok := a[srcTalID]
	if !ok {
		ids = make(map[aloha.UniqueID]struct{})
		a[srcTalID] = ids
	}
	ids[id] = struct{}{}
}
