package resolver

import (
	"sort"

	"github.com/satcom-sim/encap/pkg/aloha"
)

// SortByCarrierInterleave reorders accepted so that acceptance
// interleaves across carriers fairly: the sort key is slot_id modulo
// slotsPerCarrier (§4.5). Stable so that packets sharing a key keep the
// order RemoveCollisions produced them in.
func SortByCarrierInterleave(accepted []aloha.DataPacket, slotsPerCarrier int) {
	if slotsPerCarrier <= 0 {
		return
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return int(accepted[i].TS)%slotsPerCarrier < int(accepted[j].TS)%slotsPerCarrier
	})
}
