package resolver

import (
	"testing"

	"github.com/satcom-sim/encap/pkg/aloha"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkt(src uint8, pduID uint32, seq uint16) aloha.DataPacket {
	return aloha.DataPacket{SrcTalID: src, PduID: pduID, Seq: seq, PduNb: 1, QoS: 0}
}

func TestDSASingleReplicaAccepted(t *testing.T) {
	r := New(DSA)
	slots := aloha.SlotMap{
		1: {SlotID: 1, Replicas: []aloha.DataPacket{pkt(5, 1, 0)}},
	}
	var accepted []aloha.DataPacket
	collisions := r.RemoveCollisions(slots, &accepted)
	assert.Equal(t, 0, collisions)
	require.Len(t, accepted, 1)
	assert.Empty(t, slots[1].Replicas)
}

func TestDSACollisionSlotDropsAll(t *testing.T) {
	r := New(DSA)
	slots := aloha.SlotMap{
		1: {SlotID: 1, Replicas: []aloha.DataPacket{pkt(5, 1, 0), pkt(6, 2, 0)}},
	}
	var accepted []aloha.DataPacket
	collisions := r.RemoveCollisions(slots, &accepted)
	assert.Equal(t, 2, collisions)
	assert.Empty(t, accepted)
}

func TestDSADeduplicatesAlreadyAcceptedID(t *testing.T) {
	r := New(DSA)
	same := pkt(5, 1, 0)
	slots := aloha.SlotMap{
		1: {SlotID: 1, Replicas: []aloha.DataPacket{same}},
		2: {SlotID: 2, Replicas: []aloha.DataPacket{same}},
	}
	var accepted []aloha.DataPacket
	r.RemoveCollisions(slots, &accepted)
	assert.Len(t, accepted, 1)
}

func TestCRDSAResolvesByIterativeSuppression(t *testing.T) {
	r := New(CRDSA)
	a := pkt(5, 1, 0)
	b := pkt(6, 2, 0)
	// slot 1 collides a+b; slot 2 has only a (its replica) so a is
	// accepted there first, then signal suppression frees slot 1 down
	// to just b.
	slots := aloha.SlotMap{
		1: {SlotID: 1, Replicas: []aloha.DataPacket{a, b}},
		2: {SlotID: 2, Replicas: []aloha.DataPacket{a}},
	}
	var accepted []aloha.DataPacket
	collisions := r.RemoveCollisions(slots, &accepted)
	assert.Equal(t, 0, collisions)
	require.Len(t, accepted, 2)
}

func TestCRDSALeavesGenuineCollision(t *testing.T) {
	r := New(CRDSA)
	a := pkt(5, 1, 0)
	b := pkt(6, 2, 0)
	slots := aloha.SlotMap{
		1: {SlotID: 1, Replicas: []aloha.DataPacket{a, b}},
	}
	var accepted []aloha.DataPacket
	collisions := r.RemoveCollisions(slots, &accepted)
	assert.Equal(t, 2, collisions)
	assert.Empty(t, accepted)
}

func TestSortByCarrierInterleaveGroupsBySlotModulo(t *testing.T) {
	accepted := []aloha.DataPacket{
		{TS: 5}, {TS: 1}, {TS: 4}, {TS: 0},
	}
	SortByCarrierInterleave(accepted, 4)
	for i := 1; i < len(accepted); i++ {
		assert.True(t, int(accepted[i-1].TS)%4 <= int(accepted[i].TS)%4)
	}
}
