// Package dsp holds the sample-rate kernels of the tracking engine:
// the fixed-point oscillator, carrier and code replica generation, and
// the correlator backends.
package dsp

import "math"

const (
	// phaseBits is the width of the NCO phase accumulator. The full
	// 2^32 range represents exactly one cycle, so wraparound is the
	// phase modulo.
	phaseBits = 32
	// indexBits is the carrier table index width taken from the top
	// of the accumulator.
	indexBits = 8
	indexMask = (1 << indexBits) - 1
	// BatchWidth is the lane count of the batched stepping path,
	// matching a 256-bit integer register of 32-bit lanes.
	BatchWidth = 8

	phaseScale = float64(1 << phaseBits) // 4294967296.0
)

// PhaseStep quantizes a frequency against a reference frequency into a
// per-sample fixed-point phase increment.
func PhaseStep(freq, sampFreq float64) uint32 {
	return uint32(freq*(phaseScale/sampFreq) + 0.5)
}

// PhaseFromRadians quantizes a starting phase in radians into the
// fixed-point phase domain.
func PhaseFromRadians(rad float64) uint32 {
	return uint32(rad*(phaseScale/(2*math.Pi)) + 0.5)
}

// Oscillator is a numerically-controlled oscillator: a 32-bit phase
// accumulator advanced by a fixed step per sample. The zero value is
// unusable; construct with NewOscillator.
type Oscillator struct {
	phase uint32
	step  uint32
}

// NewOscillator builds an oscillator producing freq cycles per second
// at the given sampling rate, starting at phaseRad radians.
func NewOscillator(freq, sampFreq, phaseRad float64) *Oscillator {
	return &Oscillator{
		phase: PhaseFromRadians(phaseRad),
		step:  PhaseStep(freq, sampFreq),
	}
}

// Step returns the per-sample phase increment.
func (o *Oscillator) Step() uint32 { return o.step }

// Phase returns the current accumulator value.
func (o *Oscillator) Phase() uint32 { return o.phase }

// index extracts the table index from the top bits of a phase word.
func index(phase uint32) uint8 {
	return uint8((phase >> (phaseBits - indexBits)) & indexMask)
}

// IndicesDirect fills dst with table indices computed in closed form
// from the starting phase, without advancing the oscillator. Sample i
// sees phase + i*step; unsigned overflow supplies the cycle wrap.
func (o *Oscillator) IndicesDirect(dst []uint8) {
	for i := range dst {
		dst[i] = index(o.phase + uint32(i)*o.step)
	}
}

// Indices fills dst by incremental stepping and advances the
// oscillator by len(dst) samples.
func (o *Oscillator) Indices(dst []uint8) {
	phase := o.phase
	for i := range dst {
		dst[i] = index(phase)
		phase += o.step
	}
	o.phase = phase
}

// IndicesBatched fills dst like Indices but steps BatchWidth samples at
// a time: each batch applies the base phase plus pre-scaled lane
// offsets in one update, then advances the base by BatchWidth*step.
// The step constant is shared with the scalar path, so the index
// sequence is identical. The tail shorter than a batch falls back to
// scalar stepping.
func (o *Oscillator) IndicesBatched(dst []uint8) {
	var offsets [BatchWidth]uint32
	for k := range offsets {
		offsets[k] = uint32(k) * o.step
	}
	stride := uint32(BatchWidth) * o.step

	phase := o.phase
	n := len(dst)
	batches := n / BatchWidth
	for b := 0; b < batches; b++ {
		base := b * BatchWidth
		for k := 0; k < BatchWidth; k++ {
			dst[base+k] = index(phase + offsets[k])
		}
		phase += stride
	}
	for i := batches * BatchWidth; i < n; i++ {
		dst[i] = index(phase)
		phase += o.step
	}
	o.phase = phase
}
