package aloha

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotMapDepositCreatesSlotOnFirstUse(t *testing.T) {
	m := make(SlotMap)
	m.Deposit(2, 5, DataPacket{PduID: 1})
	m.Deposit(2, 5, DataPacket{PduID: 2})

	s, ok := m[5]
	assert.True(t, ok)
	assert.EqualValues(t, 2, s.CarrierID)
	assert.Len(t, s.Replicas, 2)
}

func TestSlotClearEmptiesReplicasKeepingSlot(t *testing.T) {
	s := &Slot{CarrierID: 1, SlotID: 3, Replicas: []DataPacket{{PduID: 1}, {PduID: 2}}}
	s.Clear()
	assert.Len(t, s.Replicas, 0)
	assert.EqualValues(t, 1, s.CarrierID)
}

func TestSlotMapClearAllEmptiesEverySlotWithoutRemovingThem(t *testing.T) {
	m := make(SlotMap)
	m.Deposit(1, 0, DataPacket{PduID: 1})
	m.Deposit(1, 1, DataPacket{PduID: 2})

	m.ClearAll()

	assert.Len(t, m, 2)
	for _, s := range m {
		assert.Len(t, s.Replicas, 0)
	}
}
