package dsp

import (
	"math"
	"testing"
)

func TestPhaseStepQuantization(t *testing.T) {
	rounded := 4.1304e6*(4294967296.0/16.3676e6) + 0.5
	cases := []struct {
		freq, fs float64
		want     uint32
	}{
		{1.023e6, 8.184e6, 1 << 29}, // exactly fs/8
		{0, 8.184e6, 0},
		{4.1304e6, 16.3676e6, uint32(rounded)},
	}
	for _, c := range cases {
		if got := PhaseStep(c.freq, c.fs); got != c.want {
			t.Errorf("PhaseStep(%g, %g) = %d, want %d", c.freq, c.fs, got, c.want)
		}
	}
}

func TestPhaseFromRadians(t *testing.T) {
	if got := PhaseFromRadians(0); got != 0 {
		t.Fatalf("zero phase quantized to %d", got)
	}
	if got := PhaseFromRadians(math.Pi); got != 1<<31 {
		t.Fatalf("pi quantized to %d, want %d", got, uint32(1<<31))
	}
}

func TestIndexPathsAgree(t *testing.T) {
	cases := []struct {
		name     string
		freq, fs float64
		phase    float64
		n        int
	}{
		{"if carrier", 4.1304e6, 16.3676e6, 0, 4001},
		{"phase offset", 4.1304e6, 16.3676e6, 2.5, 4096},
		{"near nyquist wraps fast", 8e6, 16.3676e6, 1.0, 1000},
		{"tail shorter than batch", 1.023e6, 8.184e6, 0.3, 13},
		{"single sample", 1.023e6, 8.184e6, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			direct := make([]uint8, c.n)
			scalar := make([]uint8, c.n)
			batched := make([]uint8, c.n)

			NewOscillator(c.freq, c.fs, c.phase).IndicesDirect(direct)

			oScalar := NewOscillator(c.freq, c.fs, c.phase)
			oScalar.Indices(scalar)
			oBatch := NewOscillator(c.freq, c.fs, c.phase)
			oBatch.IndicesBatched(batched)

			for i := 0; i < c.n; i++ {
				if scalar[i] != direct[i] {
					t.Fatalf("scalar[%d] = %d, direct %d", i, scalar[i], direct[i])
				}
				if batched[i] != direct[i] {
					t.Fatalf("batched[%d] = %d, direct %d", i, batched[i], direct[i])
				}
			}
			if oScalar.Phase() != oBatch.Phase() {
				t.Fatalf("advanced phase differs: scalar %d batch %d", oScalar.Phase(), oBatch.Phase())
			}
		})
	}
}

func TestIndicesAdvanceIsContiguous(t *testing.T) {
	// Two back-to-back blocks must produce the same indices as one
	// block of the combined length.
	osc := NewOscillator(4.1304e6, 16.3676e6, 1.25)
	a := make([]uint8, 777)
	b := make([]uint8, 333)
	osc.IndicesBatched(a)
	osc.IndicesBatched(b)

	whole := make([]uint8, len(a)+len(b))
	NewOscillator(4.1304e6, 16.3676e6, 1.25).IndicesBatched(whole)

	for i, v := range a {
		if whole[i] != v {
			t.Fatalf("first block diverges at %d", i)
		}
	}
	for i, v := range b {
		if whole[len(a)+i] != v {
			t.Fatalf("second block diverges at %d", i)
		}
	}
}

func TestAccumulatorWrapIsPhaseModulo(t *testing.T) {
	// A step of a quarter cycle starting three-quarters in must wrap
	// back to index zero on the second sample.
	osc := &Oscillator{phase: 3 << 30, step: 1 << 30}
	idx := make([]uint8, 3)
	osc.Indices(idx)
	if idx[0] != 192 || idx[1] != 0 || idx[2] != 64 {
		t.Fatalf("wrap sequence = %v, want [192 0 64]", idx)
	}
}
