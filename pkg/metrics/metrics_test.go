package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollisionsRatioIsObservable(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.CollisionsBefore.WithLabelValues("standard").Set(4)
	c.Collisions.WithLabelValues("standard").Set(2)
	c.CollisionsRatio.WithLabelValues("standard").Set(50)
	c.ReceivedPackets.WithLabelValues("standard").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	var found bool
	for _, f := range families {
		if f.GetName() == "aloha_collisions_ratio_percent" {
			found = true
			require.Len(t, f.Metric, 1)
			require.Equal(t, float64(50), f.Metric[0].GetGauge().GetValue())
		}
	}
	require.True(t, found)
}

func TestGseCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.GsePacketsEncoded.WithLabelValues("ctx-1").Inc()
	c.GseBytesEncoded.WithLabelValues("ctx-1").Add(128)

	families, err := reg.Gather()
	require.NoError(t, err)

	var gotBytes float64
	for _, f := range families {
		if f.GetName() == "gse_bytes_encoded_total" {
			gotBytes = f.Metric[0].GetCounter().GetValue()
		}
	}
	require.Equal(t, float64(128), gotBytes)
}
