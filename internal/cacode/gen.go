// Package cacode generates GPS L1 C/A ranging codes and wraps them in
// the guard-padded table form the replica generator indexes into.
package cacode

import "fmt"

const (
	// Length is the L1 C/A code period in chips.
	Length = 1023
	// ChipRate is the nominal L1 C/A chipping rate in Hz.
	ChipRate = 1.023e6
)

// g2Delay holds the G2 output delay per PRN (IS-GPS-200, table 3-I).
var g2Delay = []int{
	5, 6, 7, 8, 17, 18, 139, 140, 141, 251,
	252, 254, 255, 256, 257, 258, 469, 470, 471, 472,
	473, 474, 509, 512, 513, 514, 515, 516, 859, 860,
	861, 862,
}

// Generate returns the 1023-chip C/A code for the given PRN as ±1 values.
func Generate(prn int) ([]int16, error) {
	if prn < 1 || prn > len(g2Delay) {
		return nil, fmt.Errorf("prn %d out of range [1,%d]", prn, len(g2Delay))
	}

	r1 := make([]int8, 10)
	r2 := make([]int8, 10)
	for i := range r1 {
		r1[i] = -1
		r2[i] = -1
	}

	g1 := make([]int8, Length)
	g2 := make([]int8, Length)
	for i := 0; i < Length; i++ {
		g1[i] = r1[9]
		g2[i] = r2[9]
		c1 := r1[2] * r1[9]
		c2 := r2[1] * r2[2] * r2[5] * r2[7] * r2[8] * r2[9]
		for j := 9; j > 0; j-- {
			r1[j] = r1[j-1]
			r2[j] = r2[j-1]
		}
		r1[0] = c1
		r2[0] = c2
	}

	code := make([]int16, Length)
	j := Length - g2Delay[prn-1]
	for i := 0; i < Length; i++ {
		code[i] = int16(-g1[i] * g2[j%Length])
		j++
	}
	return code, nil
}
