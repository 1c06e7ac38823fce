package dsp

import (
	"math"

	"github.com/min-zhi/gnss-intrinsics/internal/cacode"
)

// CodeReplicas holds the three time-shifted code copies for one epoch.
// Buffers are reused across epochs; Resize trims or grows them to the
// current block length.
type CodeReplicas struct {
	Early  []int16
	Prompt []int16
	Late   []int16
}

// Resize adjusts all three buffers to n samples, reallocating only on
// growth.
func (r *CodeReplicas) Resize(n int) {
	grow := func(b []int16) []int16 {
		if cap(b) < n {
			return make([]int16, n)
		}
		return b[:n]
	}
	r.Early = grow(r.Early)
	r.Prompt = grow(r.Prompt)
	r.Late = grow(r.Late)
}

// GenerateCode fills the early, prompt, and late replicas for one
// epoch. For sample i the prompt chip index is
// floor(i*codeStep + remCodePhase); early and late offset it by
// -+spacing chips. remCodePhase must lie in [0, codeLen) and spacing
// in (0, 1], so every index stays inside the table's guarded range.
func GenerateCode(table *cacode.Table, replicas *CodeReplicas, codeStep, remCodePhase, spacing float64) {
	n := len(replicas.Prompt)
	for i := 0; i < n; i++ {
		base := float64(i)*codeStep + remCodePhase
		replicas.Early[i] = table.At(int(math.Floor(base - spacing)))
		replicas.Prompt[i] = table.At(int(math.Floor(base)))
		replicas.Late[i] = table.At(int(math.Floor(base + spacing)))
	}
}

// BlockSize returns the number of samples that realigns the epoch to
// the next code period boundary.
func BlockSize(codeLen int, remCodePhase, codeStep float64) int {
	return int(math.Ceil((float64(codeLen) - remCodePhase) / codeStep))
}
