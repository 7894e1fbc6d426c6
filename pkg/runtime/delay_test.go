package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSatelliteDelayGetSet(t *testing.T) {
	d := NewSatelliteDelay(250)
	assert.Equal(t, uint32(250), d.Get())

	d.Set(500)
	assert.Equal(t, uint32(500), d.Get())
}

func TestSatelliteDelayConcurrentAccess(t *testing.T) {
	d := NewSatelliteDelay(0)
	var wg sync.WaitGroup
	for i := uint32(0); i < 100; i++ {
		wg.Add(1)
		go func(v uint32) {
			defer wg.Done()
			d.Set(v)
			_ = d.Get()
		}(i)
	}
	wg.Wait()
}
