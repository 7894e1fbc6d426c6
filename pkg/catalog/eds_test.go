package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
[category sa]
slotted_aloha = true
default = true

[category dama]
slotted_aloha = false

[carrier 1]
category = sa
symbol_rate = 1000000
modcods = QPSK_1_2:1.0, 8PSK_3_4:2.25

[terminal 7]
category = dama
`

func TestLoadFileParsesCategoriesCarriersAndTerminals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.ini")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)

	sa, ok := c.Category("sa")
	require.True(t, ok)
	assert.True(t, sa.IsSlottedAloha)
	require.Len(t, sa.Carriers, 1)
	assert.EqualValues(t, 1, sa.Carriers[0].ID)
	require.Len(t, sa.Carriers[0].Modcods, 2)
	assert.Equal(t, "QPSK_1_2", sa.Carriers[0].Modcods[0].Name)
	assert.Equal(t, 2.25, sa.Carriers[0].Modcods[1].Efficiency)

	cat, err := c.AssignCategory(7)
	require.NoError(t, err)
	assert.Equal(t, "dama", cat.Name)
}

func TestParseModcodsSkipsMalformedEntries(t *testing.T) {
	out := parseModcods("QPSK_1_2:1.0, garbage, 8PSK:2.25")
	require.Len(t, out, 2)
	assert.Equal(t, "QPSK_1_2", out[0].Name)
	assert.Equal(t, "8PSK", out[1].Name)
}
