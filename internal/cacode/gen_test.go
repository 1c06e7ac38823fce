package cacode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChipValues(t *testing.T) {
	code, err := Generate(1)
	require.NoError(t, err)
	require.Len(t, code, Length)
	for i, c := range code {
		if c != 1 && c != -1 {
			t.Fatalf("chip %d is %d, want ±1", i, c)
		}
	}
}

func TestGenerateIsBalanced(t *testing.T) {
	// Every C/A code carries 512 chips of one sign and 511 of the
	// other, so the chip sum has magnitude one.
	for prn := 1; prn <= 32; prn++ {
		code, err := Generate(prn)
		require.NoError(t, err)
		sum := 0
		for _, c := range code {
			sum += int(c)
		}
		if sum != 1 && sum != -1 {
			t.Fatalf("prn %d chip sum = %d, want ±1", prn, sum)
		}
	}
}

func TestGenerateAutocorrelation(t *testing.T) {
	code, err := Generate(7)
	require.NoError(t, err)

	// Gold code: full correlation at zero lag, bounded sidelobes
	// everywhere else.
	for lag := 0; lag < Length; lag++ {
		sum := 0
		for i := 0; i < Length; i++ {
			sum += int(code[i]) * int(code[(i+lag)%Length])
		}
		if lag == 0 {
			assert.Equal(t, Length, sum)
		} else if sum > 65 || sum < -65 {
			t.Fatalf("lag %d autocorrelation %d exceeds Gold bound", lag, sum)
		}
	}
}

func TestGeneratePRNsAreDistinct(t *testing.T) {
	a, err := Generate(1)
	require.NoError(t, err)
	b, err := Generate(2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateRejectsBadPRN(t *testing.T) {
	for _, prn := range []int{0, -1, 33, 100} {
		_, err := Generate(prn)
		assert.Error(t, err, "prn %d", prn)
	}
}

func TestTableGuardChips(t *testing.T) {
	code, err := Generate(3)
	require.NoError(t, err)
	table, err := NewTable(code)
	require.NoError(t, err)

	assert.Equal(t, Length, table.Len())
	assert.Equal(t, code[Length-1], table.At(-1))
	assert.Equal(t, code[0], table.At(0))
	assert.Equal(t, code[Length-1], table.At(Length-1))
	assert.Equal(t, code[0], table.At(Length))
	assert.Equal(t, code, table.Chips())
}

func TestTableAtPanicsOutsideGuard(t *testing.T) {
	code, err := Generate(1)
	require.NoError(t, err)
	table, err := NewTable(code)
	require.NoError(t, err)

	assert.Panics(t, func() { table.At(-2) })
	assert.Panics(t, func() { table.At(Length + 1) })
}

func TestNewTableRejectsShortCode(t *testing.T) {
	_, err := NewTable([]int16{1})
	assert.Error(t, err)
}
