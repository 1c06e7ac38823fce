package cacode

import "fmt"

// Table is an immutable ranging-code sequence padded with one guard
// sample on each side, so early/late replicas shifted by up to one chip
// past either boundary read the wrapped code value instead of running
// off the slice. Valid indices span [-1, Len()].
type Table struct {
	padded []int16
	length int
}

// NewTable wraps a ±1 code sequence in guard samples. The code is
// copied; the table never mutates after construction.
func NewTable(code []int16) (*Table, error) {
	if len(code) < 2 {
		return nil, fmt.Errorf("code too short: %d chips", len(code))
	}
	padded := make([]int16, len(code)+2)
	padded[0] = code[len(code)-1]
	copy(padded[1:], code)
	padded[len(padded)-1] = code[0]
	return &Table{padded: padded, length: len(code)}, nil
}

// Len returns the code period in chips (without guard samples).
func (t *Table) Len() int { return t.length }

// At returns the chip at index i, where i may be -1 (wrapped last chip)
// or Len() (wrapped first chip). Out-of-range indices panic; callers
// derive indices from phase values already confined to the code period.
func (t *Table) At(i int) int16 {
	if i < -1 || i > t.length {
		panic(fmt.Sprintf("cacode: index %d outside padded range [-1,%d]", i, t.length))
	}
	return t.padded[i+1]
}

// Chips returns a copy of the unpadded code sequence.
func (t *Table) Chips() []int16 {
	out := make([]int16, t.length)
	copy(out, t.padded[1:1+t.length])
	return out
}
