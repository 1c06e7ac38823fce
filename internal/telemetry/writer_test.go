package telemetry

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSeries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	series := map[string][]float64{
		"carrFreq": {4.13e6, 4.14e6, 4.15e6},
		"cnoValue": {44.5},
		"empty":    {},
	}
	require.NoError(t, WriteSeries(dir, series))

	data, err := os.ReadFile(filepath.Join(dir, "carrFreq.bin"))
	require.NoError(t, err)
	require.Len(t, data, 3*8)

	got := make([]float64, 3)
	for i := range got {
		got[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	assert.Equal(t, series["carrFreq"], got)

	empty, err := os.ReadFile(filepath.Join(dir, "empty.bin"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
